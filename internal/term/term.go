package term

import (
	"fmt"
	"strings"
)

// Term is a sealed interface representing the four term shapes.
// Only Atom, Number, Variable, and Struct implement this.
type Term interface {
	term() // Sealed - only these types implement it
}

// Atom is a symbolic constant ('foo', 'some-package').
type Atom string

func (Atom) term() {}

// Number is an integer constant.
// Always int64, never float64 - floats break deterministic comparison.
type Number int64

func (Number) term() {}

// Variable is a logic variable. Identity is the ID, which is unique
// within a session. Name is the surface spelling and is kept only for
// reporting solutions; machine-generated variables have an empty Name.
type Variable struct {
	Name string
	ID   int64
}

func (Variable) term() {}

// Struct is a compound term: a functor applied to ordered arguments.
// A zero-argument Struct is not used; construct an Atom instead.
type Struct struct {
	Functor string
	Args    []Term
}

func (Struct) term() {}

// Reserved functors and atoms the engine gives structural meaning to.
const (
	// FunctorConj is the binary conjunction functor. Conjunctions are
	// right-associated: (a, b, c) is ','(a, ','(b, c)).
	FunctorConj = ","

	// FunctorCons is the list constructor: [H|T] is '.'(H, T).
	FunctorCons = "."

	// FunctorUnify is the built-in unification predicate '='/2.
	FunctorUnify = "="
)

var (
	// Nil is the empty list atom.
	Nil = Atom("[]")

	// True always succeeds; the canonical deterministic continuation.
	True = Atom("true")

	// Fail never succeeds.
	Fail = Atom("fail")
)

// Indicator is the (name, arity) key identifying a predicate.
// Atoms are zero-arity predicates.
type Indicator struct {
	Name  string
	Arity int
}

// String renders the conventional name/arity form, e.g. "workspace/1".
func (i Indicator) String() string {
	return fmt.Sprintf("%s/%d", i.Name, i.Arity)
}

// IndicatorOf returns the predicate indicator for a callable term.
// Returns ok=false for variables and numbers, which are not callable.
func IndicatorOf(t Term) (Indicator, bool) {
	switch g := t.(type) {
	case Atom:
		return Indicator{Name: string(g)}, true
	case Struct:
		return Indicator{Name: g.Functor, Arity: len(g.Args)}, true
	default:
		return Indicator{}, false
	}
}

// NewStruct constructs a compound term.
func NewStruct(functor string, args ...Term) Struct {
	return Struct{Functor: functor, Args: args}
}

// Eq constructs the built-in unification goal '='(a, b).
// This is the vehicle native predicates use to express bindings in
// branched alternatives.
func Eq(a, b Term) Term {
	return Struct{Functor: FunctorUnify, Args: []Term{a, b}}
}

// Conj builds a right-associated comma conjunction from goals.
// Zero goals yield true; a single goal is returned unchanged.
func Conj(goals ...Term) Term {
	if len(goals) == 0 {
		return True
	}
	out := goals[len(goals)-1]
	for i := len(goals) - 2; i >= 0; i-- {
		out = Struct{Functor: FunctorConj, Args: []Term{goals[i], out}}
	}
	return out
}

// List builds a proper list term from elements.
func List(elems ...Term) Term {
	return ListWithTail(Nil, elems...)
}

// ListWithTail builds a list term ending in the given tail.
func ListWithTail(tail Term, elems ...Term) Term {
	out := tail
	for i := len(elems) - 1; i >= 0; i-- {
		out = Struct{Functor: FunctorCons, Args: []Term{elems[i], out}}
	}
	return out
}

// String renders a term in surface syntax. Variables print their surface
// name when present, otherwise _G<id>. Lists and conjunctions use their
// sugar forms.
func String(t Term) string {
	var sb strings.Builder
	writeTerm(&sb, t)
	return sb.String()
}

func writeTerm(sb *strings.Builder, t Term) {
	switch v := t.(type) {
	case Atom:
		sb.WriteString(quoteAtom(string(v)))
	case Number:
		fmt.Fprintf(sb, "%d", int64(v))
	case Variable:
		if v.Name != "" {
			sb.WriteString(v.Name)
		} else {
			fmt.Fprintf(sb, "_G%d", v.ID)
		}
	case Struct:
		switch {
		case v.Functor == FunctorCons && len(v.Args) == 2:
			writeList(sb, v)
		case v.Functor == FunctorConj && len(v.Args) == 2:
			sb.WriteByte('(')
			writeTerm(sb, v.Args[0])
			sb.WriteString(", ")
			writeTerm(sb, v.Args[1])
			sb.WriteByte(')')
		default:
			sb.WriteString(quoteAtom(v.Functor))
			sb.WriteByte('(')
			for i, a := range v.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				writeTerm(sb, a)
			}
			sb.WriteByte(')')
		}
	}
}

func writeList(sb *strings.Builder, cons Struct) {
	sb.WriteByte('[')
	writeTerm(sb, cons.Args[0])
	rest := cons.Args[1]
	for {
		switch v := rest.(type) {
		case Struct:
			if v.Functor == FunctorCons && len(v.Args) == 2 {
				sb.WriteString(", ")
				writeTerm(sb, v.Args[0])
				rest = v.Args[1]
				continue
			}
		case Atom:
			if v == Nil {
				sb.WriteByte(']')
				return
			}
		}
		sb.WriteByte('|')
		writeTerm(sb, rest)
		sb.WriteByte(']')
		return
	}
}

// quoteAtom renders an atom, quoting it when it is not a plain
// lowercase-initial identifier.
func quoteAtom(name string) string {
	if isPlainAtom(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", `\'`) + "'"
}

func isPlainAtom(name string) bool {
	if name == "" {
		return false
	}
	if name == "[]" || name == FunctorConj || name == FunctorUnify {
		return true
	}
	c := name[0]
	if c < 'a' || c > 'z' {
		return false
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		ok := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !ok {
			return false
		}
	}
	return true
}
