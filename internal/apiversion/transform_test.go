package apiversion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listPayload() map[string]any {
	return map[string]any{
		"id":                 "123",
		"enhanced_analytics": map[string]any{"views": 10},
		"pagination": map[string]any{
			"current_page":   1,
			"total_pages":    5,
			"total_items":    100,
			"items_per_page": 20,
			"has_next":       true,
			"has_previous":   false,
		},
	}
}

func TestTransformLegacy(t *testing.T) {
	out, ok := Transform(listPayload(), MustParse("1.0")).(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "123", out["id"])
	assert.NotContains(t, out, "enhanced_analytics")
	assert.NotContains(t, out, "advanced_permissions")
	assert.NotContains(t, out, "version_info")

	page, ok := out["pagination"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"page": 1, "per_page": 20, "total": 100}, page)
}

func TestTransformV11(t *testing.T) {
	in := listPayload()
	in["version_info"] = map[string]any{"api_version": "2.0"}

	out, ok := Transform(in, MustParse("1.1")).(map[string]any)
	require.True(t, ok)

	assert.NotContains(t, out, "version_info")
	assert.Equal(t, map[string]any{"views": 10}, out["enhanced_analytics"])

	page, ok := out["pagination"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, page["current_page"])
	assert.Equal(t, 5, page["total_pages"])
}

func TestTransformLatest(t *testing.T) {
	out, ok := Transform(listPayload(), MustParse("2.0")).(map[string]any)
	require.True(t, ok)

	info, ok := out["version_info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2.0", info["api_version"])

	page, ok := out["pagination"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, page["has_next"])
	assert.Equal(t, false, page["has_previous"])
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	in := listPayload()
	in["version_info"] = map[string]any{"source": "stored"}

	for _, v := range []string{"1.0", "1.1", "2.0"} {
		Transform(in, MustParse(v))
	}

	want := listPayload()
	want["version_info"] = map[string]any{"source": "stored"}
	assert.Equal(t, want, in)
}

func TestTransformNonObjectIdentity(t *testing.T) {
	for _, v := range []string{"1.0", "1.1", "2.0"} {
		version := MustParse(v)

		assert.Nil(t, Transform(nil, version))
		assert.Equal(t, "hello", Transform("hello", version))
		assert.Equal(t, 42, Transform(42, version))
		assert.Equal(t, true, Transform(true, version))

		arr := []any{map[string]any{"version_info": "kept"}}
		out, ok := Transform(arr, version).([]any)
		require.True(t, ok)
		assert.Equal(t, arr, out)
	}
}

func TestTransformNestedBranchesUntouched(t *testing.T) {
	nested := map[string]any{
		"version_info":       "nested copies are not version-sensitive",
		"enhanced_analytics": map[string]any{"views": 1},
	}
	in := map[string]any{"id": "1", "details": nested}

	out, ok := Transform(in, MustParse("1.0")).(map[string]any)
	require.True(t, ok)

	// nested branch is shared, not transformed
	got, ok := out["details"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, got, "version_info")
	assert.Contains(t, got, "enhanced_analytics")
}

func TestTransformToleratesCyclesBelowTopLevel(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic
	in := map[string]any{"id": "1", "loop": cyclic}

	assert.NotPanics(t, func() {
		for _, v := range []string{"1.0", "1.1", "2.0"} {
			Transform(in, MustParse(v))
		}
	})
}

func TestTransformSerializesTopLevelDates(t *testing.T) {
	created := time.Date(2026, time.March, 5, 12, 30, 0, 0, time.UTC)
	in := map[string]any{"id": "1", "created_at": created}

	for _, v := range []string{"1.0", "1.1", "2.0"} {
		out, ok := Transform(in, MustParse(v)).(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "2026-03-05T12:30:00Z", out["created_at"], "version %s", v)
	}
}

func TestTransformLegacyKeepsUnknownPaginationFields(t *testing.T) {
	in := map[string]any{
		"pagination": map[string]any{
			"current_page": 2,
			"cursor":       "abc",
		},
	}

	out := Transform(in, MustParse("1.0")).(map[string]any)
	page := out["pagination"].(map[string]any)
	assert.Equal(t, 2, page["page"])
	assert.Equal(t, "abc", page["cursor"])
}
