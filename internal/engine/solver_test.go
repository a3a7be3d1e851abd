package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillon/hornbeam/internal/parser"
	"github.com/quillon/hornbeam/internal/session"
	"github.com/quillon/hornbeam/internal/term"
)

// testRegistry asserts a rule script into a fresh registry.
func testRegistry(t *testing.T, program string) *Registry {
	t.Helper()
	reg := NewRegistry()
	if program != "" {
		rules, err := parser.ParseProgram(program)
		require.NoError(t, err)
		require.NoError(t, reg.AssertProgram(rules))
	}
	return reg
}

// collect drains a query into rendered solutions.
func collect(t *testing.T, reg *Registry, query string) []map[string]string {
	t.Helper()
	solver, err := Query(reg, session.New(nil), query)
	require.NoError(t, err)

	var out []map[string]string
	for {
		sol, err := solver.Next()
		require.NoError(t, err)
		if sol == nil {
			return out
		}
		out = append(out, sol.Strings())
	}
}

func TestSolver_FactsInDeclarationOrder(t *testing.T) {
	reg := testRegistry(t, `
		partition(dependencies).
		partition(devDependencies).
		partition(peerDependencies).
	`)

	got := collect(t, reg, `partition(T).`)
	require.Len(t, got, 3)
	assert.Equal(t, "dependencies", got[0]["T"])
	assert.Equal(t, "devDependencies", got[1]["T"])
	assert.Equal(t, "peerDependencies", got[2]["T"])
}

func TestSolver_MembershipTest(t *testing.T) {
	reg := testRegistry(t, `partition(dependencies). partition(devDependencies).`)

	assert.Len(t, collect(t, reg, `partition(devDependencies).`), 1)
	assert.Empty(t, collect(t, reg, `partition(bogus).`))
}

func TestSolver_RulesAndConjunction(t *testing.T) {
	reg := testRegistry(t, `
		edge(a, b).
		edge(b, c).
		edge(c, d).
		two_hop(X, Z) :- edge(X, Y), edge(Y, Z).
	`)

	got := collect(t, reg, `two_hop(From, To).`)
	require.Len(t, got, 2)
	assert.Equal(t, map[string]string{"From": "a", "To": "c"}, got[0])
	assert.Equal(t, map[string]string{"From": "b", "To": "d"}, got[1])
}

func TestSolver_RecursiveRules(t *testing.T) {
	reg := testRegistry(t, `
		edge(a, b).
		edge(b, c).
		path(X, Y) :- edge(X, Y).
		path(X, Z) :- edge(X, Y), path(Y, Z).
	`)

	got := collect(t, reg, `path(a, Where).`)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0]["Where"])
	assert.Equal(t, "c", got[1]["Where"])
}

func TestSolver_ClauseVariablesRenamedPerSelection(t *testing.T) {
	// If clause variables were shared between selections, the second
	// use of same/2 would still see the first binding and fail.
	reg := testRegistry(t, `same(X, X).`)

	got := collect(t, reg, `same(a, a), same(b, b).`)
	assert.Len(t, got, 1)
}

func TestSolver_UnifyBuiltin(t *testing.T) {
	reg := testRegistry(t, `pair(1, 2).`)

	got := collect(t, reg, `pair(A, B), '='(C, found(A, B)).`)
	require.Len(t, got, 1)
	assert.Equal(t, "found(1, 2)", got[0]["C"])

	assert.Empty(t, collect(t, reg, `'='(a, b).`))
}

func TestSolver_TrueAndFail(t *testing.T) {
	reg := testRegistry(t, `w(a). w(b).`)

	assert.Len(t, collect(t, reg, `true.`), 1)
	assert.Empty(t, collect(t, reg, `w(_), fail.`))
}

func TestSolver_UnknownPredicate(t *testing.T) {
	solver, err := Query(testRegistry(t, ""), session.New(nil), `no_such_thing(X).`)
	require.NoError(t, err)

	_, err = solver.Next()
	require.Error(t, err)

	var re *ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeUnknownPredicate, re.Code)
	assert.Equal(t, "no_such_thing/1", re.Pred.String())
}

func TestSolver_StepQuota(t *testing.T) {
	reg := testRegistry(t, `loop :- loop.`)
	solver, err := Query(reg, session.New(nil), `loop.`, WithMaxSteps(500))
	require.NoError(t, err)

	_, err = solver.Next()
	require.Error(t, err)

	var re *ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeQuotaExceeded, re.Code)
}

func TestSolver_ExhaustionRestoresBindings(t *testing.T) {
	reg := testRegistry(t, `w(a). w(b). w(c).`)

	bs := term.NewBindings()
	goal, vars, err := parser.ParseQuery(`w(P).`, bs)
	require.NoError(t, err)

	before := bs.Mark()
	solver := NewSolver(reg, session.New(nil), bs, goal, vars)

	n := 0
	for {
		sol, err := solver.Next()
		require.NoError(t, err)
		if sol == nil {
			break
		}
		n++
	}
	assert.Equal(t, 3, n)
	assert.Equal(t, before, bs.Mark(), "full unwind, no residue")

	// Exhausted queries stay exhausted - no silent restart.
	sol, err := solver.Next()
	require.NoError(t, err)
	assert.Nil(t, sol)
}

func TestSolver_UnboundQueryVariable(t *testing.T) {
	reg := testRegistry(t, `anything(_).`)

	solver, err := Query(reg, session.New(nil), `anything(X).`)
	require.NoError(t, err)

	sol, err := solver.Next()
	require.NoError(t, err)
	require.NotNil(t, sol)

	assert.False(t, sol.IsBound("X"))
	assert.Equal(t, map[string]string{"X": "_"}, sol.Strings())
}

func TestSolver_UnboundGoal(t *testing.T) {
	solver, err := Query(testRegistry(t, ""), session.New(nil), `G.`)
	require.NoError(t, err)

	_, err = solver.Next()
	assert.True(t, IsInstantiationError(err))
}

// Native predicates join the search purely through returned
// alternatives; the engine must treat them like clause bodies.
func TestSolver_NativeBranching(t *testing.T) {
	reg := testRegistry(t, "")
	colors := []string{"red", "green", "blue"}
	err := reg.RegisterNative(term.Indicator{Name: "color", Arity: 1}, func(call *Call) ([]term.Term, error) {
		alts := make([]term.Term, len(colors))
		for i, c := range colors {
			alts[i] = term.Eq(call.Args[0], term.Atom(c))
		}
		return alts, nil
	})
	require.NoError(t, err)

	got := collect(t, reg, `color(C).`)
	require.Len(t, got, 3)
	assert.Equal(t, "red", got[0]["C"])
	assert.Equal(t, "green", got[1]["C"])
	assert.Equal(t, "blue", got[2]["C"])

	// Instantiated argument acts as a membership test.
	assert.Len(t, collect(t, reg, `color(green).`), 1)
	assert.Empty(t, collect(t, reg, `color(purple).`))
}

func TestSolver_NativeZeroAlternativesFails(t *testing.T) {
	reg := testRegistry(t, `w(a).`)
	err := reg.RegisterNative(term.Indicator{Name: "nothing", Arity: 0}, func(call *Call) ([]term.Term, error) {
		return nil, nil
	})
	require.NoError(t, err)

	// Failure of the native is recoverable by backtracking into w/1.
	got := collect(t, reg, `w(X), nothing.`)
	assert.Empty(t, got)
}

func TestSolver_NativeDeterministicSuccess(t *testing.T) {
	reg := testRegistry(t, "")
	require.NoError(t, reg.RegisterNative(term.Indicator{Name: "always", Arity: 0}, func(call *Call) ([]term.Term, error) {
		return []term.Term{term.True}, nil
	}))

	assert.Len(t, collect(t, reg, `always.`), 1)
}

func TestSolver_NativeErrorAbortsQuery(t *testing.T) {
	reg := testRegistry(t, `w(a). w(b).`)
	boom := term.Indicator{Name: "boom", Arity: 1}
	require.NoError(t, reg.RegisterNative(boom, func(call *Call) ([]term.Term, error) {
		return nil, NewInstantiationError(boom, 0, call.Walk(0))
	}))

	bs := term.NewBindings()
	goal, vars, err := parser.ParseQuery(`w(X), boom(X).`, bs)
	require.NoError(t, err)
	before := bs.Mark()

	solver := NewSolver(reg, session.New(nil), bs, goal, vars)
	_, err = solver.Next()
	require.True(t, IsInstantiationError(err))

	// An aborted query unwinds and stays exhausted.
	assert.Equal(t, before, bs.Mark())
	sol, err := solver.Next()
	require.NoError(t, err)
	assert.Nil(t, sol)
}

func TestSolver_NativeAlternativesBacktrackIntoLaterBranches(t *testing.T) {
	reg := testRegistry(t, `wanted(b).`)
	require.NoError(t, reg.RegisterNative(term.Indicator{Name: "pick", Arity: 1}, func(call *Call) ([]term.Term, error) {
		return []term.Term{
			term.Eq(call.Args[0], term.Atom("a")),
			term.Eq(call.Args[0], term.Atom("b")),
		}, nil
	}))

	// The first alternative binds X=a, wanted(a) fails, backtracking
	// must undo X and try the second alternative.
	got := collect(t, reg, `pick(X), wanted(X).`)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0]["X"])
}

func TestRegistry_NativeAndClausesConflict(t *testing.T) {
	reg := NewRegistry()
	ind := term.Indicator{Name: "p", Arity: 1}
	require.NoError(t, reg.RegisterNative(ind, func(call *Call) ([]term.Term, error) {
		return []term.Term{term.True}, nil
	}))

	err := reg.Assert(term.Rule{Head: term.NewStruct("p", term.Atom("a"))})
	assert.Error(t, err)

	err = reg.RegisterNative(ind, func(call *Call) ([]term.Term, error) { return nil, nil })
	assert.Error(t, err)
}

func TestRegistry_ControlConstructsReserved(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.Assert(term.Rule{Head: term.Atom("true")}))
	assert.Error(t, reg.Assert(term.Rule{Head: term.NewStruct("=", term.Atom("a"), term.Atom("b"))}))
}
