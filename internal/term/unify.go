package term

// Unify computes the most general substitution extension making a and b
// equal, mutating bs in place. Every new binding is recorded on the
// trail, so a failed caller can restore the previous state with
// Bindings.Undo. Unify itself does not undo on failure: partial
// bindings stay trailed and the caller's mark decides what is rolled
// back. That is deliberate - the engine truncates to the choice-point
// mark, and native predicates take their own mark around trial
// unifications.
//
// Rules:
//   - atoms and numbers unify iff equal by value
//   - an unbound variable unifies with anything and is bound
//   - structs unify iff same functor and arity and all corresponding
//     arguments unify, short-circuiting on the first mismatch
//
// No occurs-check (see package doc).
func Unify(a, b Term, bs *Bindings) bool {
	a = bs.Walk(a)
	b = bs.Walk(b)

	if av, ok := a.(Variable); ok {
		if bv, ok := b.(Variable); ok && av.ID == bv.ID {
			return true
		}
		bs.Bind(av, b)
		return true
	}
	if bv, ok := b.(Variable); ok {
		bs.Bind(bv, a)
		return true
	}

	switch av := a.(type) {
	case Atom:
		bv, ok := b.(Atom)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case Struct:
		bv, ok := b.(Struct)
		if !ok || av.Functor != bv.Functor || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Unify(av.Args[i], bv.Args[i], bs) {
				return false
			}
		}
		return true
	}
	return false
}
