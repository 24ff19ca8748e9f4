package apiversion

import (
	"fmt"
	"net/http"
	"regexp"
)

// Vendor is the product token used in the vendor media type:
// application/vnd.<vendor>.v<MAJOR>.<MINOR>+json
const Vendor = "suncrest"

var (
	acceptVersionRe = regexp.MustCompile(`application/vnd\.` + Vendor + `\.v(\d+\.\d+)\+json`)
	pathVersionRe   = regexp.MustCompile(`^/api/v(\d+\.\d+)(?:/|$)`)
)

// Resolver extracts a client's intended API version from a request.
// Precedence: Accept vendor media type, then X-API-Version, then a
// version segment in the URL path. Anything malformed or outside the
// supported set degrades silently to the registry default; resolution
// never fails.
type Resolver struct {
	registry *Registry
}

func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve returns the first recognized supported version in precedence
// order, or the default version.
func (r *Resolver) Resolve(req *http.Request) Version {
	if m := acceptVersionRe.FindStringSubmatch(req.Header.Get("Accept")); m != nil {
		if v, ok := r.normalize(m[1]); ok {
			return v
		}
	}

	if raw := req.Header.Get("X-API-Version"); raw != "" {
		if v, ok := r.normalize(raw); ok {
			return v
		}
	}

	if m := pathVersionRe.FindStringSubmatch(req.URL.Path); m != nil {
		if v, ok := r.normalize(m[1]); ok {
			return v
		}
	}

	return r.registry.Default()
}

// normalize parses a candidate and checks registry membership.
func (r *Resolver) normalize(raw string) (Version, bool) {
	v, err := Parse(raw)
	if err != nil {
		return Version{}, false
	}
	if !r.registry.IsSupported(v) {
		return Version{}, false
	}
	return v, true
}

// MediaType returns the vendor media type for a version.
func MediaType(v Version) string {
	return fmt.Sprintf("application/vnd.%s.v%s+json", Vendor, v)
}
