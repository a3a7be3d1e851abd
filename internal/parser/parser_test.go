package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillon/hornbeam/internal/term"
)

func TestParseProgram_FactsAndRules(t *testing.T) {
	rules, err := ParseProgram(`
		% runtime dependency partitions
		partition(dependencies).
		partition(devDependencies).

		consistent(P) :- workspace(P), workspace_version(P, _).
	`)
	require.NoError(t, err)
	require.Len(t, rules, 3)

	assert.Equal(t, term.NewStruct("partition", term.Atom("dependencies")), rules[0].Head)
	assert.Nil(t, rules[0].Body, "fact has no body")

	ind, ok := rules[2].Indicator()
	require.True(t, ok)
	assert.Equal(t, term.Indicator{Name: "consistent", Arity: 1}, ind)
	require.NotNil(t, rules[2].Body)

	conj, ok := rules[2].Body.(term.Struct)
	require.True(t, ok)
	assert.Equal(t, term.FunctorConj, conj.Functor)
}

func TestParseProgram_SharedVariablesWithinClause(t *testing.T) {
	rules, err := ParseProgram(`same(X, X).`)
	require.NoError(t, err)

	head := rules[0].Head.(term.Struct)
	assert.Equal(t, head.Args[0], head.Args[1], "both occurrences of X are one variable")
}

func TestParseProgram_VariablesFreshAcrossClauses(t *testing.T) {
	rules, err := ParseProgram("a(X).\nb(X).")
	require.NoError(t, err)

	x1 := rules[0].Head.(term.Struct).Args[0].(term.Variable)
	x2 := rules[1].Head.(term.Struct).Args[0].(term.Variable)
	assert.NotEqual(t, x1.ID, x2.ID)
}

func TestParseProgram_QuotedAtoms(t *testing.T) {
	rules, err := ParseProgram(`dep('@scope/pkg', "^1.0.0").`)
	require.NoError(t, err)

	head := rules[0].Head.(term.Struct)
	assert.Equal(t, term.Atom("@scope/pkg"), head.Args[0])
	assert.Equal(t, term.Atom("^1.0.0"), head.Args[1], "double-quoted text is an atom")
}

func TestParseProgram_Lists(t *testing.T) {
	rules, err := ParseProgram(`kinds([a, b | T]).`)
	require.NoError(t, err)

	head := rules[0].Head.(term.Struct)
	assert.Equal(t, "[a, b|T]", term.String(head.Args[0]))
}

func TestParseProgram_Numbers(t *testing.T) {
	rules, err := ParseProgram(`weight(lodash, -3). weight(react, 42).`)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, term.Number(-3), rules[0].Head.(term.Struct).Args[1])
	assert.Equal(t, term.Number(42), rules[1].Head.(term.Struct).Args[1])
}

func TestParseProgram_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"missing dot", `workspace(a)`},
		{"unterminated quote", `dep('oops.`},
		{"variable head", `X :- workspace(a).`},
		{"stray punct", `workspace(a))`},
		{"lone colon", `a : b.`},
		{"empty args", `f().`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseProgram(tc.src)
			require.Error(t, err)
		})
	}
}

func TestParseProgram_ErrorPosition(t *testing.T) {
	_, err := ParseProgram("a(b).\n  c(d")
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
}

func TestParseQuery_CollectsNamedVariables(t *testing.T) {
	bs := term.NewBindings()
	goal, vars, err := ParseQuery(`workspace_ident(Path, Ident), workspace_version(Path, _).`, bs)
	require.NoError(t, err)
	require.NotNil(t, goal)

	require.Len(t, vars, 2, "underscore is not reported")
	assert.Equal(t, "Path", vars[0].Name)
	assert.Equal(t, "Ident", vars[1].Name)
}

func TestParseQuery_TrailingGarbage(t *testing.T) {
	bs := term.NewBindings()
	_, _, err := ParseQuery(`workspace(P). extra`, bs)
	require.Error(t, err)
}
