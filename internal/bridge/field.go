package bridge

import (
	"github.com/quillon/hornbeam/internal/engine"
	"github.com/quillon/hornbeam/internal/fieldexpr"
	"github.com/quillon/hornbeam/internal/project"
	"github.com/quillon/hornbeam/internal/term"
)

// workspaceField implements workspace_field/3. Both the workspace path
// and the field path must be bound; a free variable in either position
// fails silently, as does an absent workspace or field. The value is
// delivered in its canonical string form.
func workspaceField(call *engine.Call) ([]term.Term, error) {
	snap, err := call.Snapshot()
	if err != nil {
		return nil, err
	}
	path, pathBound, err := atomArg(call, 0)
	if err != nil {
		return nil, err
	}
	field, fieldBound, err := atomArg(call, 1)
	if err != nil {
		return nil, err
	}
	if !pathBound || !fieldBound {
		return nil, nil
	}

	w, ok := snap.ByPath(path)
	if !ok {
		return nil, nil
	}
	s, ok := w.Field(field)
	if !ok {
		return nil, nil
	}
	return []term.Term{term.Eq(call.Args[2], term.Atom(s))}, nil
}

// workspaceVersion implements workspace_version/2, shorthand for
// looking up the manifest's version field.
func workspaceVersion(call *engine.Call) ([]term.Term, error) {
	snap, err := call.Snapshot()
	if err != nil {
		return nil, err
	}
	path, bound, err := atomArg(call, 0)
	if err != nil {
		return nil, err
	}
	if !bound {
		return nil, nil
	}

	w, ok := snap.ByPath(path)
	if !ok {
		return nil, nil
	}
	v, ok := w.Field("version")
	if !ok {
		return nil, nil
	}
	return []term.Term{term.Eq(call.Args[1], term.Atom(v))}, nil
}

// workspaceFieldTest implements workspace_field_test/3 and /4. The
// field's decoded value is evaluated against the expression in the
// sandbox; the optional fourth argument is a list of extra values bound
// to $0, $1, ... in order. The predicate is semi-deterministic: it
// succeeds at most once and binds nothing.
func workspaceFieldTest(call *engine.Call) ([]term.Term, error) {
	snap, err := call.Snapshot()
	if err != nil {
		return nil, err
	}
	path, pathBound, err := atomArg(call, 0)
	if err != nil {
		return nil, err
	}
	field, fieldBound, err := atomArg(call, 1)
	if err != nil {
		return nil, err
	}
	if !pathBound || !fieldBound {
		return nil, nil
	}

	// The expression itself must be instantiated; there is nothing
	// sensible to enumerate for a free test.
	expr, exprBound, err := atomArg(call, 2)
	if err != nil {
		return nil, err
	}
	if !exprBound {
		return nil, engine.NewInstantiationError(call.Pred, 2, call.Walk(2))
	}

	var extras []any
	if call.Pred.Arity == 4 {
		extras, err = extraValues(call, 3)
		if err != nil {
			return nil, err
		}
	}

	w, ok := snap.ByPath(path)
	if !ok {
		return nil, nil
	}
	value, ok := w.FieldValue(field)
	if !ok {
		return nil, nil
	}

	pass, err := fieldexpr.Evaluate(expr, project.PlainValue(value), extras)
	if err != nil {
		return nil, engine.NewSandboxError(call.Pred, expr, err)
	}
	return deterministic(pass), nil
}

// extraValues reads argument i as a proper list of atoms and numbers,
// converting it to the evaluator's positional bindings. Anything else
// in the list (a free variable, a nested compound, an improper tail) is
// an instantiation error.
func extraValues(call *engine.Call, i int) ([]any, error) {
	var out []any
	cur := call.Resolve(i)
	for {
		switch t := cur.(type) {
		case term.Atom:
			if t == term.Nil {
				return out, nil
			}
			return nil, engine.NewInstantiationError(call.Pred, i, call.Walk(i))
		case term.Struct:
			if t.Functor != term.FunctorCons || len(t.Args) != 2 {
				return nil, engine.NewInstantiationError(call.Pred, i, call.Walk(i))
			}
			switch e := t.Args[0].(type) {
			case term.Atom:
				out = append(out, string(e))
			case term.Number:
				out = append(out, int64(e))
			default:
				return nil, engine.NewInstantiationError(call.Pred, i, call.Walk(i))
			}
			cur = t.Args[1]
		default:
			return nil, engine.NewInstantiationError(call.Pred, i, call.Walk(i))
		}
	}
}
