package version

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"0.9.13", New(0, 9, 13)},
		{"v1.4", New(1, 4, 0)},
		{"V2", New(2, 0, 0)},
		{" v0.8.7 ", New(0, 8, 7)},
		{"0.2", New(0, 2, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "v", "1..2", "1.2.3.4", "1.x", "-1.0", "1.2-rc1", "one"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			var fe *FormatError
			assert.ErrorAs(t, err, &fe)
		})
	}
}

func TestCompare(t *testing.T) {
	a := MustParse("0.9.4")
	b := MustParse("0.9.13")
	c := MustParse("1.3")

	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(a))
	assert.Equal(t, 0, MustParse("1.3.0").Compare(c))
	assert.Equal(t, 1, c.Compare(a))
	assert.Equal(t, -1, a.Compare(c))
}

func TestCompareEqual(t *testing.T) {
	for _, v := range []Version{{}, New(0, 9, 13), New(1, 3, 0), New(2, 0, 1)} {
		assert.Zero(t, v.Compare(v), v.String())
		assert.False(t, v.Less(v), v.String())
	}
	assert.Zero(t, MustParse("v1.3").Compare(MustParse("1.3.0")))
	assert.Zero(t, MustParse("0.9").Compare(New(0, 9, 0)))
}

func TestCompareSorts(t *testing.T) {
	vs := []Version{New(1, 9, 0), New(0, 9, 13), New(1, 3, 0), New(0, 9, 13), New(0, 9, 4)}
	slices.SortFunc(vs, Version.Compare)
	assert.Equal(t, []Version{New(0, 9, 4), New(0, 9, 13), New(0, 9, 13), New(1, 3, 0), New(1, 9, 0)}, vs)

	i, found := slices.BinarySearchFunc(vs, New(1, 3, 0), Version.Compare)
	assert.True(t, found)
	assert.Equal(t, 3, i)
}

func TestString(t *testing.T) {
	assert.Equal(t, "v0.9.13", New(0, 9, 13).String())
	assert.Equal(t, "v1.9", New(1, 9, 0).String())
	assert.True(t, Version{}.IsZero())
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("bogus") })
}
