package apiversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCompatible(t *testing.T) {
	reg := DefaultRegistry()

	t.Run("every version is compatible with itself", func(t *testing.T) {
		for _, v := range reg.Supported() {
			assert.True(t, reg.IsCompatible(v, v), "version %s", v)
		}
	})

	t.Run("one-directional: newer server shapes are tolerated", func(t *testing.T) {
		supported := reg.Supported()
		for i, a := range supported {
			for _, b := range supported[i+1:] {
				assert.True(t, reg.IsCompatible(a, b), "%s -> %s", a, b)
				assert.False(t, reg.IsCompatible(b, a), "%s -> %s", b, a)
			}
		}
	})

	t.Run("unsupported versions are never compatible", func(t *testing.T) {
		assert.False(t, reg.IsCompatible(MustParse("3.0"), MustParse("2.0")))
		assert.False(t, reg.IsCompatible(MustParse("1.0"), MustParse("0.9")))
	})
}

func TestCompatibilityInfo(t *testing.T) {
	reg := DefaultRegistry()
	graph := DefaultMigrationGraph()

	t.Run("deprecated default version", func(t *testing.T) {
		info, ok := reg.CompatibilityInfo(MustParse("1.0"), graph)
		require.True(t, ok)

		assert.Equal(t, "1.0", info.Version)
		assert.Equal(t, StatusDeprecated, info.Status)
		assert.Equal(t, "2026-12-31", info.SunsetDate)
		assert.Equal(t, []string{"1.0", "1.1", "2.0"}, info.CompatibleVersions)
		assert.Equal(t, []string{"1.1", "2.0"}, info.MigrationAvailableTo)
		assert.NotEmpty(t, info.DeprecatedFeatures)
	})

	t.Run("latest version", func(t *testing.T) {
		info, ok := reg.CompatibilityInfo(MustParse("2.0"), graph)
		require.True(t, ok)

		assert.Equal(t, StatusActive, info.Status)
		assert.Empty(t, info.SunsetDate)
		assert.Equal(t, []string{"2.0"}, info.CompatibleVersions)
		assert.Empty(t, info.MigrationAvailableTo)
		assert.NotEmpty(t, info.BreakingChanges)
	})

	t.Run("unknown version", func(t *testing.T) {
		_, ok := reg.CompatibilityInfo(MustParse("9.9"), graph)
		assert.False(t, ok)
	})
}

func TestNewRegistry(t *testing.T) {
	entries := map[Version]Entry{
		MustParse("1.0"): {Status: StatusActive},
	}

	t.Run("default must be a member", func(t *testing.T) {
		_, err := NewRegistry(MustParse("0.9"), MustParse("1.0"), entries)
		assert.Error(t, err)
	})

	t.Run("latest must be a member", func(t *testing.T) {
		_, err := NewRegistry(MustParse("1.0"), MustParse("2.0"), entries)
		assert.Error(t, err)
	})
}
