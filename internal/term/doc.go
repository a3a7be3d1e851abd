// Package term provides the term representation and unification machinery
// for the hornbeam resolution engine.
//
// This package contains the foundational data model. All other internal
// packages that touch the engine import term; term imports nothing internal.
//
// Key design constraints:
//   - Terms are immutable once constructed. Bindings never mutate a term;
//     they live in a separate Bindings store keyed by variable ID.
//   - NO float numbers - Number is always int64.
//   - Every new binding is recorded on an append-only trail so that
//     backtracking can restore the store to an exact earlier state.
//   - Unification performs no occurs-check. Binding a variable to a term
//     containing itself builds a cyclic term; this is the standard
//     performance tradeoff and is accepted as documented incompleteness.
package term
