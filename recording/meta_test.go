package recording

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMeta(t *testing.T) {
	t.Run("with header", func(t *testing.T) {
		m, err := ParseMeta(strings.NewReader("key,value\nRecording Name,000\nData Format Version,v1.4\n"), "info.csv")
		require.NoError(t, err)
		assert.Equal(t, []string{"Recording Name", "Data Format Version"}, m.Keys())
		v, ok := m.Get(KeyDataFormatVersion)
		assert.True(t, ok)
		assert.Equal(t, "v1.4", v)
	})

	t.Run("without header", func(t *testing.T) {
		m, err := ParseMeta(strings.NewReader("Capture Software Version,0.8.5\r\n"), "user_info.csv")
		require.NoError(t, err)
		assert.Equal(t, 1, m.Len())
	})

	t.Run("utf8 bom", func(t *testing.T) {
		m, err := ParseMeta(strings.NewReader("\ufeffkey,value\nSubject,Jürgen\n"), "info.csv")
		require.NoError(t, err)
		v, _ := m.Get("Subject")
		assert.Equal(t, "Jürgen", v)
		assert.Equal(t, []string{"Subject"}, m.Keys())
	})

	t.Run("quoted comma", func(t *testing.T) {
		m, err := ParseMeta(strings.NewReader("key,value\nNote,\"a, b\"\n"), "info.csv")
		require.NoError(t, err)
		v, _ := m.Get("Note")
		assert.Equal(t, "a, b", v)
	})

	t.Run("wrong field count", func(t *testing.T) {
		_, err := ParseMeta(strings.NewReader("key,value\nonly-one\n"), "info.csv")
		var fe *FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "info.csv", fe.Path)
	})
}

func TestEncodeMetaRoundTrip(t *testing.T) {
	m := NewMeta()
	m.Set("Recording Name", "2019_01_01")
	m.Set(KeyDataFormatVersion, "v0.9.0")
	m.Set("Duration Time", "00:01:02")
	m.Set(KeyDataFormatVersion, "v1.9")

	var buf bytes.Buffer
	require.NoError(t, EncodeMeta(&buf, m))
	assert.True(t, strings.HasPrefix(buf.String(), "key,value\r\n"))

	got, err := ParseMeta(&buf, "info.csv")
	require.NoError(t, err)
	assert.Equal(t, m.Keys(), got.Keys())
	v, _ := got.Get(KeyDataFormatVersion)
	assert.Equal(t, "v1.9", v)
}

func TestMetaClone(t *testing.T) {
	m := NewMeta()
	m.Set("a", "1")
	c := m.Clone()
	c.Set("a", "2")
	c.Set("b", "3")

	v, _ := m.Get("a")
	assert.Equal(t, "1", v)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 2, c.Len())
}
