// Package bridge implements the native predicates that expose a
// project snapshot's workspaces and dependency records to the
// resolution engine as if they were ordinary facts.
//
// Every predicate follows the engine's goal-branching contract: it
// reads the snapshot, never writes a binding itself, and returns
// alternative continuation goals built from '='/2. Enumeration order
// always follows the snapshot's own order - workspaces in registration
// order, dependencies in manifest declaration order, partitions in
// their fixed order.
//
// Failure policy (deliberate, observed by rule authors, do not
// generalize):
//   - Absent workspace, field, or dependency: silent failure. Absence
//     is not exceptional; the search just backtracks.
//   - A structural argument that is neither a valid bound value nor a
//     genuinely free variable (a number, or a partially built
//     compound, where an atom is expected): InstantiationError.
//   - Session without a bound snapshot: HostBindingError.
//   - Malformed test expression: SandboxEvaluationError.
package bridge
