package apiversion

import "time"

var (
	v11 = Version{Major: 1, Minor: 1}
	v20 = Version{Major: 2, Minor: 0}
)

// Transform returns a copy of payload whose top-level shape matches the
// given version's contract.
//
// Only top-level keys are considered; nested objects and arrays are
// shared with the input untouched, so cycles below the top level are
// never traversed and the input map is never mutated. Non-object
// payloads (nil, scalars, arrays) pass through unchanged.
func Transform(payload any, v Version) any {
	obj, ok := payload.(map[string]any)
	if !ok {
		return payload
	}

	switch {
	case v.Less(v11):
		return transformLegacy(obj)
	case v.Less(v20):
		return transformV11(obj)
	default:
		return transformLatest(obj, v)
	}
}

// v1.0: no enhanced analytics, no advanced permissions, no version_info,
// and the legacy pagination shape.
func transformLegacy(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, val := range obj {
		switch k {
		case "enhanced_analytics", "advanced_permissions", "version_info":
			continue
		case "pagination":
			if page, ok := val.(map[string]any); ok {
				out[k] = legacyPagination(page)
				continue
			}
			out[k] = val
		default:
			out[k] = normalizeValue(val)
		}
	}
	return out
}

// v1.1: rich pagination and analytics, but still no version_info.
func transformV11(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, val := range obj {
		if k == "version_info" {
			continue
		}
		out[k] = normalizeValue(val)
	}
	return out
}

// v2.0+: everything retained, version_info.api_version guaranteed.
func transformLatest(obj map[string]any, v Version) map[string]any {
	out := make(map[string]any, len(obj)+1)
	for k, val := range obj {
		out[k] = normalizeValue(val)
	}

	info := map[string]any{}
	if existing, ok := out["version_info"].(map[string]any); ok {
		for k, val := range existing {
			info[k] = val
		}
	}
	info["api_version"] = v.String()
	out["version_info"] = info

	return out
}

// legacyPagination renames the rich sub-fields to the legacy shape and
// drops the cursor hints. Unrelated sub-fields are kept verbatim.
func legacyPagination(page map[string]any) map[string]any {
	out := make(map[string]any, len(page))
	for k, val := range page {
		switch k {
		case "current_page":
			out["page"] = val
		case "items_per_page":
			out["per_page"] = val
		case "total_items":
			out["total"] = val
		case "total_pages", "has_next", "has_previous":
			// dropped in the legacy shape
		default:
			out[k] = val
		}
	}
	return out
}

// normalizeValue canonicalizes top-level date values to ISO-8601.
func normalizeValue(val any) any {
	switch t := val.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(time.RFC3339)
	default:
		return val
	}
}
