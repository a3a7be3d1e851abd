package engine

import (
	"fmt"

	"github.com/quillon/hornbeam/internal/project"
	"github.com/quillon/hornbeam/internal/session"
	"github.com/quillon/hornbeam/internal/term"
)

// NativeFunc is a host-implemented predicate. It inspects the call's
// arguments under the current substitution and returns the alternative
// continuation goals - the goal-branching contract:
//
//   - The engine treats the returned goals exactly as though they were
//     the alternative clause bodies of the predicate being solved, each
//     followed by the caller's existing continuation, tried in order,
//     backtracked through on failure.
//   - Zero goals is an outright failure of the call.
//   - Exactly one ground goal (typically term.True) is a deterministic
//     success.
//
// Natives never write bindings themselves; they express bindings by
// returning '='/2 goals (term.Eq), which the engine executes. A native
// that fails must therefore leave no trace at all.
//
// A non-nil error aborts the whole query; use the ResolutionError
// constructors so the error taxonomy stays intact.
type NativeFunc func(call *Call) ([]term.Term, error)

// Call is the view a native predicate gets of the current search state.
type Call struct {
	// Pred is the indicator the goal was dispatched under.
	Pred term.Indicator

	// Args are the goal's arguments, unwalked.
	Args []term.Term

	solver *Solver
}

// Walk dereferences argument i under the current substitution.
func (c *Call) Walk(i int) term.Term {
	return c.solver.bs.Walk(c.Args[i])
}

// Resolve dereferences argument i deeply, substituting bound variables
// at every level. Natives use it to read structured arguments like lists.
func (c *Call) Resolve(i int) term.Term {
	return c.solver.bs.Resolve(c.Args[i])
}

// Session returns the session this query runs under.
func (c *Call) Session() *session.Session {
	return c.solver.sess
}

// Snapshot returns the session's project snapshot, or a HostBindingError
// when the session has none. Domain predicates call this first.
func (c *Call) Snapshot() (*project.Snapshot, error) {
	snap := c.solver.sess.Snapshot()
	if snap == nil {
		return nil, NewHostBindingError(c.Pred, c.solver.sess.ID())
	}
	return snap, nil
}

// predicate is the tagged registry variant: exactly one of clauses or
// native is populated. Dispatch happens on the tag, never on an
// untyped lookup.
type predicate struct {
	clauses []term.Rule
	native  NativeFunc
}

// Registry maps predicate indicators to their implementations.
// It is populated up front (program load, native registration) and
// read-only during solving, so concurrent queries may share one.
type Registry struct {
	preds map[term.Indicator]*predicate
}

// NewRegistry creates an empty registry. Control constructs (',', true,
// fail, '=') live in the engine itself, not in the registry.
func NewRegistry() *Registry {
	return &Registry{preds: make(map[term.Indicator]*predicate)}
}

// RegisterNative installs a native predicate. A predicate is either
// declarative or native, never both, and natives cannot be redefined.
func (r *Registry) RegisterNative(ind term.Indicator, fn NativeFunc) error {
	if _, exists := r.preds[ind]; exists {
		return fmt.Errorf("predicate %s already defined", ind)
	}
	r.preds[ind] = &predicate{native: fn}
	return nil
}

// Assert appends one clause to a declarative predicate, preserving
// declaration order.
func (r *Registry) Assert(rule term.Rule) error {
	ind, ok := rule.Indicator()
	if !ok {
		return fmt.Errorf("clause head must be callable")
	}
	if isReserved(ind) {
		return fmt.Errorf("cannot redefine control construct %s", ind)
	}
	p, exists := r.preds[ind]
	if !exists {
		p = &predicate{}
		r.preds[ind] = p
	}
	if p.native != nil {
		return fmt.Errorf("cannot add clauses to native predicate %s", ind)
	}
	p.clauses = append(p.clauses, rule)
	return nil
}

// AssertProgram asserts a parsed rule script, in declaration order.
func (r *Registry) AssertProgram(rules []term.Rule) error {
	for _, rule := range rules {
		if err := r.Assert(rule); err != nil {
			return err
		}
	}
	return nil
}

// Has reports whether the indicator is defined at all.
func (r *Registry) Has(ind term.Indicator) bool {
	_, ok := r.preds[ind]
	return ok
}

func (r *Registry) lookup(ind term.Indicator) (*predicate, bool) {
	p, ok := r.preds[ind]
	return p, ok
}

func isReserved(ind term.Indicator) bool {
	switch {
	case ind.Name == term.FunctorConj && ind.Arity == 2:
		return true
	case ind.Name == term.FunctorUnify && ind.Arity == 2:
		return true
	case ind.Arity == 0 && (ind.Name == string(term.True) || ind.Name == string(term.Fail)):
		return true
	}
	return false
}
