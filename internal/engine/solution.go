package engine

import (
	"github.com/quillon/hornbeam/internal/term"
)

// Solution maps one query's free variables to their resolved terms.
// Variables that remain in a resolved term are the explicit "still
// unbound" markers; a variable bound to nothing at all resolves to
// itself.
type Solution struct {
	names []string
	vals  map[string]term.Term
}

// Vars returns the query variable names in query order.
func (s *Solution) Vars() []string {
	return s.names
}

// Get returns the resolved term for a query variable.
func (s *Solution) Get(name string) (term.Term, bool) {
	t, ok := s.vals[name]
	return t, ok
}

// IsBound reports whether the variable resolved to anything other than
// a bare unbound variable.
func (s *Solution) IsBound(name string) bool {
	t, ok := s.vals[name]
	if !ok {
		return false
	}
	_, unbound := t.(term.Variable)
	return !unbound
}

// Ground reports whether the variable's term contains no variables at
// all.
func (s *Solution) Ground(name string) bool {
	t, ok := s.vals[name]
	return ok && isGroundTerm(t)
}

func isGroundTerm(t term.Term) bool {
	switch v := t.(type) {
	case term.Variable:
		return false
	case term.Struct:
		for _, a := range v.Args {
			if !isGroundTerm(a) {
				return false
			}
		}
	}
	return true
}

// Strings renders every variable for display, in query order. Unbound
// variables render as "_".
func (s *Solution) Strings() map[string]string {
	out := make(map[string]string, len(s.names))
	for _, name := range s.names {
		t := s.vals[name]
		if _, unbound := t.(term.Variable); unbound {
			out[name] = "_"
			continue
		}
		out[name] = term.String(t)
	}
	return out
}

// Atom returns the variable's value as an atom text, when it resolved
// to an atom. Convenience for drivers reading known-shape solutions.
func (s *Solution) Atom(name string) (string, bool) {
	a, ok := s.vals[name].(term.Atom)
	return string(a), ok
}
