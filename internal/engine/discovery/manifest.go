package discovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrMissingName = errors.New("manifest has no name")

// Dependency kinds as they appear in package.json.
const (
	KindRuntime  = "dependencies"
	KindDev      = "devDependencies"
	KindPeer     = "peerDependencies"
	KindOptional = "optionalDependencies"
)

// Manifest is the subset of package.json the analysis reads. Dependency
// maps are never nil after ParseManifest.
type Manifest struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Description          string            `json:"description"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

// Dependency is one declared dependency name, merged across kinds.
type Dependency struct {
	Name string
	// Spec is the version spec of the first kind that declared it.
	Spec  string
	Kinds []string
	// Workspace reports whether any declaring spec carries the
	// workspace-local marker.
	Workspace bool
}

func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return Manifest{}, ErrMissingName
	}
	if m.Dependencies == nil {
		m.Dependencies = map[string]string{}
	}
	if m.DevDependencies == nil {
		m.DevDependencies = map[string]string{}
	}
	if m.PeerDependencies == nil {
		m.PeerDependencies = map[string]string{}
	}
	if m.OptionalDependencies == nil {
		m.OptionalDependencies = map[string]string{}
	}
	return m, nil
}

// DeclaredDependencies merges every dependency kind, collapsing duplicate
// names. The result is sorted by name.
func (m Manifest) DeclaredDependencies(workspaceMarker string) []Dependency {
	kinds := []struct {
		kind string
		deps map[string]string
	}{
		{KindRuntime, m.Dependencies},
		{KindDev, m.DevDependencies},
		{KindPeer, m.PeerDependencies},
		{KindOptional, m.OptionalDependencies},
	}

	byName := make(map[string]*Dependency)
	for _, k := range kinds {
		for name, spec := range k.deps {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			dep, ok := byName[name]
			if !ok {
				dep = &Dependency{Name: name, Spec: spec}
				byName[name] = dep
			}
			dep.Kinds = append(dep.Kinds, k.kind)
			if workspaceMarker != "" && strings.HasPrefix(strings.TrimSpace(spec), workspaceMarker) {
				dep.Workspace = true
			}
		}
	}

	out := make([]Dependency, 0, len(byName))
	for _, dep := range byName {
		out = append(out, *dep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
