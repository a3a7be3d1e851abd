package term

// Bindings is the substitution store: a mapping from variable ID to the
// term that variable is bound to, plus the trail that records every
// binding in the order it was made.
//
// Bindings only grow by binding previously unbound variables. Undo is
// the sole way entries are removed, and it removes exactly the suffix
// of bindings made after a given trail mark. This pairing is what makes
// backtracking exact: a choice point stores Mark() before trying an
// alternative and calls Undo(mark) when that alternative fails.
//
// Bindings also owns variable allocation. Fresh IDs are unique for the
// lifetime of the store, which is one engine session.
type Bindings struct {
	vals  map[int64]Term
	trail []int64
	next  int64
}

// NewBindings creates an empty substitution store.
func NewBindings() *Bindings {
	return &Bindings{vals: make(map[int64]Term)}
}

// Fresh allocates a new unbound variable. Name may be empty for
// machine-generated variables.
func (b *Bindings) Fresh(name string) Variable {
	b.next++
	return Variable{Name: name, ID: b.next}
}

// Mark returns the current trail position. Pair with Undo.
func (b *Bindings) Mark() int {
	return len(b.trail)
}

// Undo removes every binding made after mark, restoring the store to
// exactly its state when Mark was called. No leaked bindings remain.
func (b *Bindings) Undo(mark int) {
	for i := len(b.trail) - 1; i >= mark; i-- {
		delete(b.vals, b.trail[i])
	}
	b.trail = b.trail[:mark]
}

// Bind binds an unbound variable and records it on the trail.
// Binding an already-bound variable is a programming error; unification
// always walks to the representative first.
func (b *Bindings) Bind(v Variable, t Term) {
	if _, dup := b.vals[v.ID]; dup {
		panic("term: rebinding bound variable " + String(v))
	}
	b.vals[v.ID] = t
	b.trail = append(b.trail, v.ID)
}

// Walk dereferences chained variable bindings until it reaches either a
// non-variable term or an unbound variable. It does not descend into
// struct arguments; see Resolve for that.
func (b *Bindings) Walk(t Term) Term {
	for {
		v, ok := t.(Variable)
		if !ok {
			return t
		}
		bound, ok := b.vals[v.ID]
		if !ok {
			return v
		}
		t = bound
	}
}

// Resolve applies the substitution throughout a term, rebuilding structs
// whose arguments change. Unbound variables remain in the result; a
// fully ground result contains none.
func (b *Bindings) Resolve(t Term) Term {
	t = b.Walk(t)
	s, ok := t.(Struct)
	if !ok {
		return t
	}
	args := make([]Term, len(s.Args))
	for i, a := range s.Args {
		args[i] = b.Resolve(a)
	}
	return Struct{Functor: s.Functor, Args: args}
}

// IsGround reports whether the term contains no unbound variables under
// the current substitution.
func (b *Bindings) IsGround(t Term) bool {
	switch v := b.Walk(t).(type) {
	case Variable:
		return false
	case Struct:
		for _, a := range v.Args {
			if !b.IsGround(a) {
				return false
			}
		}
	}
	return true
}

// Rename returns a copy of t with every variable replaced by a fresh
// one, consistently within one call. Used when a stored clause is
// selected so each resolution step gets its own variables.
func (b *Bindings) Rename(t Term) Term {
	return b.renameWith(t, make(map[int64]Variable))
}

func (b *Bindings) renameWith(t Term, seen map[int64]Variable) Term {
	switch v := t.(type) {
	case Variable:
		fresh, ok := seen[v.ID]
		if !ok {
			fresh = b.Fresh(v.Name)
			seen[v.ID] = fresh
		}
		return fresh
	case Struct:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = b.renameWith(a, seen)
		}
		return Struct{Functor: v.Functor, Args: args}
	default:
		return t
	}
}
