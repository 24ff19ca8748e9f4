package apiversion

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Status of a supported version.
type Status string

const (
	StatusActive     Status = "active"
	StatusDeprecated Status = "deprecated"
)

// Entry is the registry metadata for one supported version.
// SunsetDate is set only when Status is deprecated.
type Entry struct {
	Status             Status
	SunsetDate         time.Time
	DeprecatedFeatures []string
	BreakingChanges    []string
}

// Registry is the fixed set of supported versions plus the default
// (oldest fallback) and latest members. It is built once at startup and
// never mutated, so it is safe for concurrent reads.
type Registry struct {
	entries map[Version]Entry
	ordered []Version
	def     Version
	latest  Version
}

// NewRegistry builds a registry. The default and latest versions must be
// members of the entry set.
func NewRegistry(def, latest Version, entries map[Version]Entry) (*Registry, error) {
	if _, ok := entries[def]; !ok {
		return nil, fmt.Errorf("default version %s is not in the supported set", def)
	}
	if _, ok := entries[latest]; !ok {
		return nil, fmt.Errorf("latest version %s is not in the supported set", latest)
	}

	ordered := make([]Version, 0, len(entries))
	for v := range entries {
		ordered = append(ordered, v)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Less(ordered[j]) })

	return &Registry{
		entries: entries,
		ordered: ordered,
		def:     def,
		latest:  latest,
	}, nil
}

func (r *Registry) Default() Version { return r.def }
func (r *Registry) Latest() Version  { return r.latest }

// Supported returns all registry members in ascending order.
func (r *Registry) Supported() []Version {
	out := make([]Version, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// SupportedStrings returns the supported set as "MAJOR.MINOR" strings.
func (r *Registry) SupportedStrings() []string {
	out := make([]string, 0, len(r.ordered))
	for _, v := range r.ordered {
		out = append(out, v.String())
	}
	return out
}

func (r *Registry) SupportedHeader() string {
	return strings.Join(r.SupportedStrings(), ", ")
}

func (r *Registry) IsSupported(v Version) bool {
	_, ok := r.entries[v]
	return ok
}

// Entry returns the metadata for a supported version.
func (r *Registry) Entry(v Version) (Entry, bool) {
	e, ok := r.entries[v]
	return e, ok
}

// Default process-wide registry: 1.0 is the oldest/fallback version and is
// deprecated with a published sunset date, 2.0 is the latest.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(
		MustParse("1.0"),
		MustParse("2.0"),
		map[Version]Entry{
			MustParse("1.0"): {
				Status:     StatusDeprecated,
				SunsetDate: time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
				DeprecatedFeatures: []string{
					"legacy pagination shape (page/per_page/total)",
					"flat analytics payloads",
				},
			},
			MustParse("1.1"): {
				Status: StatusActive,
			},
			MustParse("2.0"): {
				Status: StatusActive,
				BreakingChanges: []string{
					"version_info is required on every response",
					"pagination includes has_next/has_previous",
				},
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return reg
}
