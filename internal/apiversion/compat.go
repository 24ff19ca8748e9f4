package apiversion

// IsCompatible reports whether a client built for clientVersion can
// safely accept a response shaped for serverVersion. The relation is
// one-directional: equal-or-newer server shapes are tolerated, older
// ones never are. Both versions must be supported.
func (r *Registry) IsCompatible(clientVersion, serverVersion Version) bool {
	if !r.IsSupported(clientVersion) || !r.IsSupported(serverVersion) {
		return false
	}
	return serverVersion.Compare(clientVersion) >= 0
}

// CompatibilityInfo describes one supported version for API consumers.
type CompatibilityInfo struct {
	Version              string   `json:"version"`
	Status               Status   `json:"status"`
	SunsetDate           string   `json:"sunset_date,omitempty"`
	CompatibleVersions   []string `json:"compatible_versions"`
	DeprecatedFeatures   []string `json:"deprecated_features"`
	BreakingChanges      []string `json:"breaking_changes"`
	MigrationAvailableTo []string `json:"migration_available_to"`
}

// CompatibilityInfo reports registry metadata, the compatible version
// set, and the versions reachable through the migration graph.
func (r *Registry) CompatibilityInfo(v Version, graph *MigrationGraph) (CompatibilityInfo, bool) {
	entry, ok := r.Entry(v)
	if !ok {
		return CompatibilityInfo{}, false
	}

	info := CompatibilityInfo{
		Version:              v.String(),
		Status:               entry.Status,
		CompatibleVersions:   []string{},
		DeprecatedFeatures:   entry.DeprecatedFeatures,
		BreakingChanges:      entry.BreakingChanges,
		MigrationAvailableTo: []string{},
	}
	if entry.Status == StatusDeprecated && !entry.SunsetDate.IsZero() {
		info.SunsetDate = entry.SunsetDate.Format("2006-01-02")
	}
	if info.DeprecatedFeatures == nil {
		info.DeprecatedFeatures = []string{}
	}
	if info.BreakingChanges == nil {
		info.BreakingChanges = []string{}
	}

	for _, candidate := range r.ordered {
		if r.IsCompatible(v, candidate) {
			info.CompatibleVersions = append(info.CompatibleVersions, candidate.String())
		}
	}

	if graph != nil {
		for _, target := range graph.Targets(v) {
			info.MigrationAvailableTo = append(info.MigrationAvailableTo, target.String())
		}
	}

	return info, true
}
