package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnify_AtomsAndNumbers(t *testing.T) {
	bs := NewBindings()

	assert.True(t, Unify(Atom("a"), Atom("a"), bs))
	assert.False(t, Unify(Atom("a"), Atom("b"), bs))
	assert.True(t, Unify(Number(7), Number(7), bs))
	assert.False(t, Unify(Number(7), Number(8), bs))
	assert.False(t, Unify(Atom("7"), Number(7), bs))
}

func TestUnify_VariableBindsAndWalks(t *testing.T) {
	bs := NewBindings()
	x := bs.Fresh("X")
	y := bs.Fresh("Y")

	require.True(t, Unify(x, y, bs))
	require.True(t, Unify(y, Atom("hello"), bs))

	// Both variables now dereference to the same atom.
	assert.Equal(t, Atom("hello"), bs.Walk(x))
	assert.Equal(t, Atom("hello"), bs.Walk(y))
}

func TestUnify_SelfUnificationIsNoop(t *testing.T) {
	bs := NewBindings()
	x := bs.Fresh("X")

	require.True(t, Unify(x, x, bs))
	assert.Equal(t, 0, bs.Mark(), "no binding should be trailed")
}

func TestUnify_Structs(t *testing.T) {
	bs := NewBindings()
	x := bs.Fresh("X")

	ok := Unify(
		NewStruct("dep", Atom("lodash"), x),
		NewStruct("dep", Atom("lodash"), Atom("^4.0.0")),
		bs,
	)
	require.True(t, ok)
	assert.Equal(t, Atom("^4.0.0"), bs.Walk(x))

	assert.False(t, Unify(NewStruct("dep", Atom("a")), NewStruct("dep", Atom("a"), Atom("b")), bs))
	assert.False(t, Unify(NewStruct("dep", Atom("a")), NewStruct("pkg", Atom("a")), bs))
}

// Symmetry: unify(a,b) and unify(b,a) agree on success, and applying the
// resulting substitution to both sides yields identical ground terms.
func TestUnify_Symmetric(t *testing.T) {
	cases := []struct {
		name string
		a, b func(bs *Bindings, x, y Variable) Term
		ok   bool
	}{
		{
			name: "var against struct",
			a:    func(bs *Bindings, x, y Variable) Term { return NewStruct("f", x, Atom("b")) },
			b:    func(bs *Bindings, x, y Variable) Term { return NewStruct("f", Atom("a"), y) },
			ok:   true,
		},
		{
			name: "clash",
			a:    func(bs *Bindings, x, y Variable) Term { return NewStruct("f", x, Atom("b")) },
			b:    func(bs *Bindings, x, y Variable) Term { return NewStruct("f", Atom("a"), Atom("c")) },
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			left := NewBindings()
			lx, ly := left.Fresh("X"), left.Fresh("Y")
			right := NewBindings()
			rx, ry := right.Fresh("X"), right.Fresh("Y")

			okAB := Unify(tc.a(left, lx, ly), tc.b(left, lx, ly), left)
			okBA := Unify(tc.b(right, rx, ry), tc.a(right, rx, ry), right)
			require.Equal(t, tc.ok, okAB)
			require.Equal(t, okAB, okBA)

			if tc.ok {
				assert.Equal(t,
					left.Resolve(tc.a(left, lx, ly)),
					left.Resolve(tc.b(left, lx, ly)),
				)
			}
		})
	}
}

func TestBindings_UndoRestoresExactState(t *testing.T) {
	bs := NewBindings()
	x := bs.Fresh("X")
	y := bs.Fresh("Y")

	require.True(t, Unify(x, Atom("keep"), bs))
	mark := bs.Mark()

	require.True(t, Unify(y, Atom("discard"), bs))
	require.True(t, Unify(NewStruct("f", bs.Fresh("")), NewStruct("f", Atom("z")), bs))

	bs.Undo(mark)

	assert.Equal(t, Atom("keep"), bs.Walk(x))
	assert.Equal(t, y, bs.Walk(y), "Y must be unbound again")
	assert.Equal(t, mark, bs.Mark())
}

func TestBindings_Resolve(t *testing.T) {
	bs := NewBindings()
	x := bs.Fresh("X")
	y := bs.Fresh("Y")
	require.True(t, Unify(x, NewStruct("f", y), bs))
	require.True(t, Unify(y, Atom("a"), bs))

	assert.Equal(t, NewStruct("f", Atom("a")), bs.Resolve(x))
	assert.True(t, bs.IsGround(x))

	z := bs.Fresh("Z")
	assert.False(t, bs.IsGround(NewStruct("g", z)))
}

func TestBindings_RenameIsConsistentAndFresh(t *testing.T) {
	bs := NewBindings()
	x := bs.Fresh("X")
	clause := NewStruct("f", x, x, bs.Fresh("Y"))

	renamed := bs.Rename(clause).(Struct)

	// Same source variable maps to the same fresh variable.
	assert.Equal(t, renamed.Args[0], renamed.Args[1])
	// But not to the original.
	assert.NotEqual(t, clause.Args[0], renamed.Args[0])
	// Distinct source variables stay distinct.
	assert.NotEqual(t, renamed.Args[0], renamed.Args[2])
}
