package project

import (
	"fmt"
)

// DependencyType is one of the three fixed partitions under which a
// workspace declares a dependency.
type DependencyType string

const (
	// DependencyTypeRegular is the runtime partition.
	DependencyTypeRegular DependencyType = "dependencies"

	// DependencyTypeDev is the development partition.
	DependencyTypeDev DependencyType = "devDependencies"

	// DependencyTypePeer is the peer partition.
	DependencyTypePeer DependencyType = "peerDependencies"
)

// DependencyTypes enumerates the partitions in their fixed order.
// This order is observable through dependency_type/1 and must not change.
var DependencyTypes = []DependencyType{
	DependencyTypeRegular,
	DependencyTypeDev,
	DependencyTypePeer,
}

// ParseDependencyType validates a partition name.
func ParseDependencyType(s string) (DependencyType, bool) {
	for _, t := range DependencyTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Dependency is one declared dependency: identifier plus version range.
type Dependency struct {
	Ident string
	Range string
}

// DependencySet is an ident-keyed dependency map that preserves
// manifest declaration order.
type DependencySet struct {
	order   []string
	byIdent map[string]Dependency
}

// NewDependencySet creates an empty set.
func NewDependencySet() *DependencySet {
	return &DependencySet{byIdent: make(map[string]Dependency)}
}

// Add inserts or replaces a dependency. A replaced ident keeps its
// original position, matching JSON duplicate-key semantics (last value
// wins, first position counts).
func (s *DependencySet) Add(d Dependency) {
	if _, ok := s.byIdent[d.Ident]; !ok {
		s.order = append(s.order, d.Ident)
	}
	s.byIdent[d.Ident] = d
}

// Get looks up a dependency by identifier.
func (s *DependencySet) Get(ident string) (Dependency, bool) {
	d, ok := s.byIdent[ident]
	return d, ok
}

// All returns the dependencies in declaration order.
func (s *DependencySet) All() []Dependency {
	out := make([]Dependency, len(s.order))
	for i, ident := range s.order {
		out[i] = s.byIdent[ident]
	}
	return out
}

// Len returns the number of dependencies.
func (s *DependencySet) Len() int {
	return len(s.order)
}

// Workspace is one package of the project: its location, canonical
// identifier, manifest, and dependency partitions.
type Workspace struct {
	// RelPath is the workspace directory relative to the project root,
	// always forward-slashed; the root workspace is ".".
	RelPath string

	// Ident is the canonical identifier (the manifest name, or the
	// relative path when the manifest has no name). Not necessarily
	// unique across workspaces.
	Ident string

	// Manifest is the raw manifest with declaration order preserved.
	Manifest *Manifest

	deps map[DependencyType]*DependencySet
}

// Dependencies returns the partition's dependency set, never nil.
func (w *Workspace) Dependencies(t DependencyType) *DependencySet {
	if s, ok := w.deps[t]; ok {
		return s
	}
	return NewDependencySet()
}

// Field resolves a dotted field path to its string form.
// ok is false when the field is absent (including JSON null).
func (w *Workspace) Field(path string) (string, bool) {
	return w.Manifest.FieldString(path)
}

// FieldValue resolves a dotted field path to its decoded value, for
// callers that evaluate expressions against it.
func (w *Workspace) FieldValue(path string) (any, bool) {
	return w.Manifest.FieldValue(path)
}

// Snapshot is the immutable project view bound to a session.
type Snapshot struct {
	workspaces []*Workspace
	byPath     map[string]*Workspace
	byIdent    map[string][]*Workspace
}

// NewSnapshot assembles a snapshot from workspaces in registration
// order. Paths must be unique; identifiers may repeat.
func NewSnapshot(workspaces []*Workspace) (*Snapshot, error) {
	s := &Snapshot{
		workspaces: workspaces,
		byPath:     make(map[string]*Workspace, len(workspaces)),
		byIdent:    make(map[string][]*Workspace),
	}
	for _, w := range workspaces {
		if _, dup := s.byPath[w.RelPath]; dup {
			return nil, fmt.Errorf("duplicate workspace path %q", w.RelPath)
		}
		s.byPath[w.RelPath] = w
		s.byIdent[w.Ident] = append(s.byIdent[w.Ident], w)
	}
	return s, nil
}

// Workspaces returns all workspaces in registration order.
func (s *Snapshot) Workspaces() []*Workspace {
	return s.workspaces
}

// ByPath looks a workspace up by its relative path.
func (s *Snapshot) ByPath(relPath string) (*Workspace, bool) {
	w, ok := s.byPath[relPath]
	return w, ok
}

// ByIdent returns every workspace sharing an identifier, in
// registration order. The result may be empty or hold several entries.
func (s *Snapshot) ByIdent(ident string) []*Workspace {
	return s.byIdent[ident]
}
