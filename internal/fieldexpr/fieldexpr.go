// Package fieldexpr evaluates boolean test expressions against
// manifest field values.
//
// Expressions are CUE expressions interpreted in-process - a small,
// explicitly whitelisted language of comparisons, containment, and
// simple arithmetic, with none of the reach of a general scripting
// runtime. The evaluator sees only the bindings it is handed: the
// field value on the reserved identifier "$$" and positional extras on
// "$0", "$1", and so on. No engine or host internals leak in, there is
// no I/O, and a fresh evaluation context is created per call so no
// state is shared between calls.
//
//	$$ == "1.2.3"
//	$$ != $0
//	len($$) > 0
package fieldexpr

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ValueSlot is the reserved identifier the field value is bound to.
const ValueSlot = "$$"

// Evaluate runs one expression. value is the field's decoded value;
// extras bind to $0, $1, ... in order.
//
// The boolean result reports truthiness: booleans as themselves,
// strings and collections by non-emptiness, numbers by being non-zero,
// null as false. A malformed or non-concrete expression returns an
// error - distinct from evaluating to false.
func Evaluate(expr string, value any, extras []any) (bool, error) {
	ctx := cuecontext.New() // fresh per call, no shared state

	scope := map[string]any{ValueSlot: value}
	for i, e := range extras {
		scope[fmt.Sprintf("$%d", i)] = e
	}
	scopeVal := ctx.Encode(scope)
	if err := scopeVal.Err(); err != nil {
		return false, fmt.Errorf("encode bindings: %w", err)
	}

	v := ctx.CompileString(expr, cue.Scope(scopeVal), cue.InferBuiltins(true))
	if err := v.Err(); err != nil {
		return false, fmt.Errorf("compile: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return false, fmt.Errorf("evaluate: %w", err)
	}
	return truthy(v)
}

func truthy(v cue.Value) (bool, error) {
	switch v.Kind() {
	case cue.BoolKind:
		return v.Bool()
	case cue.StringKind:
		s, err := v.String()
		return s != "", err
	case cue.IntKind:
		n, err := v.Int64()
		return n != 0, err
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		return f != 0, err
	case cue.NullKind:
		return false, nil
	case cue.ListKind:
		n, err := v.Len().Int64()
		return n > 0, err
	case cue.StructKind:
		it, err := v.Fields()
		if err != nil {
			return false, err
		}
		return it.Next(), nil
	default:
		return false, fmt.Errorf("expression result has no truth value (kind %s)", v.Kind())
	}
}
