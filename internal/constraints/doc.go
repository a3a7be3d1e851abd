// Package constraints runs enforcement rules against a project
// snapshot and reports the differences as structured diagnostics.
//
// Rule scripts declare what the project must look like through two
// generator predicates:
//
//	gen_enforced_dependency(WorkspacePath, DependencyIdent, DependencyRange, DependencyType)
//	gen_enforced_field(WorkspacePath, FieldPath, FieldValue)
//
// The checker enumerates every solution of each generator and diffs the
// enforced state against the snapshot. An enforced range or value of
// null means the dependency or field must be absent. Diagnostics come
// out in deterministic order: workspaces in registration order, then
// enforcements in generator solution order, dependencies before fields.
package constraints
