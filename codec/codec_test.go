package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMsgPack(t *testing.T) {
	c := MsgPack{}
	in := map[string]any{
		"topic":      "gaze",
		"timestamp":  1.5,
		"norm_pos":   []any{0.25, 0.75},
		"confidence": 0.9,
		"base_data":  []any{map[string]any{"id": int64(0)}},
	}

	b, err := c.Marshal(in)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, c.Unmarshal(b, &out))
	assert.Equal(t, "gaze", out["topic"])
	assert.Equal(t, 1.5, out["timestamp"])
	assert.Equal(t, []any{0.25, 0.75}, out["norm_pos"])

	var anyOut any
	require.NoError(t, c.Unmarshal(b, &anyOut))
	assert.IsType(t, map[string]any{}, anyOut)
}

func TestMsgPack_Errors(t *testing.T) {
	c := MsgPack{}

	b, err := c.Marshal([]any{"not", "a", "map"})
	require.NoError(t, err)

	var m map[string]any
	assert.Error(t, c.Unmarshal(b, &m))

	var s string
	assert.Error(t, c.Unmarshal(b, &s))

	assert.Error(t, c.Unmarshal(append(b, 0xc0), new(any)), "trailing bytes")
	assert.Error(t, c.Unmarshal([]byte{0x92}, new(any)), "truncated array")
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "msgpack"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("pickle")
	assert.False(t, ok)
}

func TestJSON(t *testing.T) {
	b := MustMarshal(JSON{}, map[string]int{"steps": 3})
	var out map[string]int
	require.NoError(t, JSON{}.Unmarshal(b, &out))
	assert.Equal(t, 3, out["steps"])
}
