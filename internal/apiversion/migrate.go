package apiversion

import "sort"

// MigrationStep is one directed edge of the migration graph: a
// documented transform from one payload shape to the next.
type MigrationStep struct {
	From        Version
	To          Version
	Breaking    bool
	Description string
	Transform   func(map[string]any) map[string]any
}

// MigrationGraph holds the forward migration edges between supported
// versions. Like the registry it is built once at startup and read-only
// afterwards.
type MigrationGraph struct {
	edges map[Version]map[Version]MigrationStep
}

func NewMigrationGraph(steps ...MigrationStep) *MigrationGraph {
	g := &MigrationGraph{edges: make(map[Version]map[Version]MigrationStep)}
	for _, s := range steps {
		if g.edges[s.From] == nil {
			g.edges[s.From] = make(map[Version]MigrationStep)
		}
		g.edges[s.From][s.To] = s
	}
	return g
}

// Path returns the ordered steps from one version to another.
//
// Equal versions and backward targets yield an empty path; backward
// migration is deliberately unsupported. Only direct edges are followed:
// every forward pair in the shipped registry has one, so no multi-hop
// search is performed. An unconnected forward pair also yields an empty
// path, and callers that must distinguish "no-op" from "unreachable"
// check the path length themselves.
func (g *MigrationGraph) Path(from, to Version) []MigrationStep {
	if from.Compare(to) >= 0 {
		return nil
	}
	if step, ok := g.edges[from][to]; ok {
		return []MigrationStep{step}
	}
	return nil
}

// Apply migrates a payload along the path from one version to another,
// threading each step's output into the next. An empty path returns the
// payload unchanged, whether that means no-op or unreachable.
func (g *MigrationGraph) Apply(payload map[string]any, from, to Version) map[string]any {
	out := payload
	for _, step := range g.Path(from, to) {
		out = step.Transform(out)
	}
	return out
}

// Targets returns the versions directly reachable from a version, in
// ascending order.
func (g *MigrationGraph) Targets(from Version) []Version {
	out := make([]Version, 0, len(g.edges[from]))
	for to := range g.edges[from] {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// DefaultMigrationGraph wires the shipped forward migrations. Steps copy
// the payload's top level and never fabricate fields beyond the ones
// their contract documents.
func DefaultMigrationGraph() *MigrationGraph {
	v10 := MustParse("1.0")

	return NewMigrationGraph(
		MigrationStep{
			From:        v10,
			To:          v11,
			Breaking:    false,
			Description: "add enhanced analytics and advanced permission metadata",
			Transform:   migrateTo11,
		},
		MigrationStep{
			From:        v11,
			To:          v20,
			Breaking:    true,
			Description: "introduce structured version_info on every payload",
			Transform:   migrateTo20,
		},
		MigrationStep{
			From:        v10,
			To:          v20,
			Breaking:    true,
			Description: "composite upgrade: enhanced analytics plus version_info",
			Transform: func(payload map[string]any) map[string]any {
				return migrateTo20(migrateTo11(payload))
			},
		},
	)
}

func migrateTo11(payload map[string]any) map[string]any {
	out := copyTopLevel(payload)
	if _, ok := out["enhanced_analytics"]; !ok {
		out["enhanced_analytics"] = map[string]any{
			"views":       0,
			"conversions": 0,
		}
	}
	if _, ok := out["advanced_permissions"]; !ok {
		out["advanced_permissions"] = map[string]any{
			"roles": []any{},
		}
	}
	return out
}

func migrateTo20(payload map[string]any) map[string]any {
	out := copyTopLevel(payload)

	info := map[string]any{}
	if existing, ok := out["version_info"].(map[string]any); ok {
		for k, v := range existing {
			info[k] = v
		}
	}
	info["api_version"] = v20.String()
	out["version_info"] = info

	return out
}

func copyTopLevel(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		out[k] = v
	}
	return out
}
