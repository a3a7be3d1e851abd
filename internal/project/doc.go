// Package project models a multi-package workspace snapshot: the
// ordered set of workspaces, their manifests, and their dependency
// partitions.
//
// A Snapshot is read-only after construction. The engine's native
// predicates only ever read it, so concurrent queries from independent
// sessions over one snapshot are safe. Mutating the underlying files
// while a query is in flight is undefined and out of scope.
//
// Determinism rules:
//   - Workspace order is registration order: root first, then glob
//     patterns in declaration order, matches sorted within a pattern.
//   - Dependency maps preserve manifest declaration order.
//   - Manifest objects keep key declaration order; field string forms
//     are reproducible byte-for-byte.
package project
