package bridge

import (
	"github.com/quillon/hornbeam/internal/engine"
	"github.com/quillon/hornbeam/internal/term"
)

// Register installs every domain predicate into the registry.
func Register(reg *engine.Registry) error {
	natives := []struct {
		ind term.Indicator
		fn  engine.NativeFunc
	}{
		{term.Indicator{Name: "dependency_type", Arity: 1}, dependencyType},
		{term.Indicator{Name: "workspace", Arity: 1}, workspace},
		{term.Indicator{Name: "workspace_ident", Arity: 2}, workspaceIdent},
		{term.Indicator{Name: "workspace_field", Arity: 3}, workspaceField},
		{term.Indicator{Name: "workspace_field_test", Arity: 3}, workspaceFieldTest},
		{term.Indicator{Name: "workspace_field_test", Arity: 4}, workspaceFieldTest},
		{term.Indicator{Name: "workspace_version", Arity: 2}, workspaceVersion},
		{term.Indicator{Name: "workspace_has_dependency", Arity: 4}, workspaceHasDependency},
	}
	for _, n := range natives {
		if err := reg.RegisterNative(n.ind, n.fn); err != nil {
			return err
		}
	}
	return nil
}

// atomArg inspects argument i, which must be an atom or a genuinely
// free variable. bound=false means free; anything else (a number, a
// compound, even a partially bound one) is an instantiation error.
func atomArg(call *engine.Call, i int) (value string, bound bool, err error) {
	switch a := call.Walk(i).(type) {
	case term.Atom:
		return string(a), true, nil
	case term.Variable:
		return "", false, nil
	default:
		return "", false, engine.NewInstantiationError(call.Pred, i, a)
	}
}

// deterministic wraps the success/failure of a membership-style check
// into the branching contract: success is one true continuation,
// failure is zero.
func deterministic(ok bool) []term.Term {
	if !ok {
		return nil
	}
	return []term.Term{term.True}
}
