package apiversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("parses MAJOR.MINOR", func(t *testing.T) {
		v, err := Parse("2.0")
		require.NoError(t, err)
		assert.Equal(t, Version{Major: 2, Minor: 0}, v)
		assert.Equal(t, "2.0", v.String())
	})

	t.Run("tolerates surrounding whitespace", func(t *testing.T) {
		v, err := Parse(" 1.1 ")
		require.NoError(t, err)
		assert.Equal(t, Version{Major: 1, Minor: 1}, v)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, raw := range []string{"", "1", "1.2.3", "v1.0", "1.x", "-1.0", "a.b"} {
			_, err := Parse(raw)
			assert.Error(t, err, "input %q", raw)
		}
	})
}

func TestCompare(t *testing.T) {
	v10 := MustParse("1.0")
	v11 := MustParse("1.1")
	v20 := MustParse("2.0")

	assert.Equal(t, 0, v10.Compare(v10))
	assert.Equal(t, -1, v10.Compare(v11))
	assert.Equal(t, 1, v11.Compare(v10))

	// major dominates minor
	assert.Equal(t, -1, v11.Compare(v20))
	assert.True(t, MustParse("1.9").Less(v20))

	assert.True(t, v10.Less(v11))
	assert.False(t, v20.Less(v20))
}
