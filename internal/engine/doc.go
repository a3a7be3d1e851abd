// Package engine implements the hornbeam resolution engine.
//
// The engine is the heart of hornbeam - it proves query goals against a
// registry of declarative clauses and native predicates, enumerating
// variable bindings by SLD-style resolution with backtracking.
//
// ARCHITECTURE:
//
// Single-Threaded Cooperative Search:
// One logical thread of control runs the resolution loop to the next
// solution. There is no parallel exploration of choice points - search
// spaces here are small dependency graphs, so simplicity wins over
// throughput. The resumable state between solutions is exactly the top
// of the choice-point stack; the caller pulls the next solution on
// demand and may simply discard the solver at any point (all state is
// pure data, nothing to clean up).
//
// Resolution Step:
//  1. Pop the next goal off the goal stack.
//  2. Conjunctions, true, fail, and '='/2 are handled structurally -
//     the engine is the only code that ever writes a binding.
//  3. A declarative predicate pushes one choice point covering its
//     clauses in declaration order; each selection renames the clause
//     fresh and unifies its head with the goal.
//  4. A native predicate is invoked synchronously and returns
//     alternative continuation goals; the engine turns them into a
//     choice point exactly as if they were clause bodies. This
//     goal-branching contract is the sole mechanism by which native
//     code joins the search.
//
// Backtracking:
// Each choice point stores the trail mark taken before its first
// alternative ran. Failure truncates the trail to that mark and resumes
// with the next stored alternative; exhausting every choice point ends
// the query with the substitution restored to its pre-query state, no
// residue.
//
// Goal stacks are immutable linked lists. Branching constructs new
// stacks that share the unmodified tail, so alternatives never see each
// other's goals.
//
// DETERMINISM:
// Clauses are tried in declaration order, native alternatives in the
// order supplied, and enumeration over external collections follows the
// collection's own order. No randomness, no concurrency.
package engine
