// Package session binds one engine session to one external project
// snapshot for the session's whole lifetime.
//
// The snapshot is a constructor-time parameter: a session either has
// its snapshot from birth or (in engine-only setups) has none at all.
// There is no late binding and no reassignment. Native predicates that
// need the snapshot call Snapshot and treat a nil result as a fatal
// integration defect, never as a domain failure.
//
// A process-wide registry maps session identity to snapshot for host
// code that holds only the ID. The registry is weak: it does not extend
// a session's lifetime, and Close releases the entry.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/quillon/hornbeam/internal/project"
)

// Session is an opaque identity bound to at most one project snapshot.
type Session struct {
	id       string
	snapshot *project.Snapshot
}

var registry = struct {
	sync.RWMutex
	snapshots map[string]*project.Snapshot
}{snapshots: make(map[string]*project.Snapshot)}

// New creates a session bound to the given snapshot. A nil snapshot is
// legal for engine-only use; domain predicates will refuse to run
// against such a session.
func New(snapshot *project.Snapshot) *Session {
	s := &Session{
		id:       uuid.Must(uuid.NewV7()).String(),
		snapshot: snapshot,
	}
	if snapshot != nil {
		registry.Lock()
		registry.snapshots[s.id] = snapshot
		registry.Unlock()
	}
	return s
}

// ID returns the session identity (a UUIDv7 string).
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns the bound project snapshot, or nil when the session
// was created without one.
func (s *Session) Snapshot() *project.Snapshot {
	return s.snapshot
}

// Close releases the registry entry. The session itself remains usable
// as plain data; callers discard it after closing.
func (s *Session) Close() {
	registry.Lock()
	delete(registry.snapshots, s.id)
	registry.Unlock()
}

// Lookup resolves a session ID to its snapshot. Host extension points
// that only carry the identity use this; engine code reaches the
// snapshot through the session itself.
func Lookup(id string) (*project.Snapshot, bool) {
	registry.RLock()
	defer registry.RUnlock()
	snap, ok := registry.snapshots[id]
	return snap, ok
}
