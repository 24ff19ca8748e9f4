// Package apiversion implements the response versioning layer: version
// resolution from request headers/paths, per-version payload transforms,
// and forward migration of stored payloads between versions.
package apiversion

import (
	"fmt"
	"strconv"
	"strings"
)

// Version identifies one API response contract as MAJOR.MINOR.
// It is parsed once at the boundary and compared numerically afterwards.
type Version struct {
	Major int
	Minor int
}

// Parse parses a "MAJOR.MINOR" string into a Version.
func Parse(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("invalid version %q: want MAJOR.MINOR", s)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return Version{}, fmt.Errorf("invalid major version in %q", s)
	}

	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return Version{}, fmt.Errorf("invalid minor version in %q", s)
	}

	return Version{Major: major, Minor: minor}, nil
}

// MustParse is Parse for static version literals; it panics on bad input.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compare returns -1, 0 or 1 ordering by major then minor.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		if v.Major < other.Major {
			return -1
		}
		return 1
	}
	if v.Minor != other.Minor {
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	}
	return 0
}

func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}
