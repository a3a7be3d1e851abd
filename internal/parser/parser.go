// Package parser reads rule-script source in the surface clause syntax:
// facts, Horn clauses, comma conjunctions, and lists.
//
//	% every workspace must be private
//	enforced(P) :- workspace(P), workspace_field_test(P, 'private', '$$ == true').
//
// The parser builds term values directly; there is no separate AST.
// Variable identity is scoped to one clause (or one whole query) and is
// allocated through a VarSource so query variables share the session's
// ID space.
package parser

import (
	"fmt"

	"github.com/quillon/hornbeam/internal/term"
)

// Error is a parse error with source position.
type Error struct {
	Line    int
	Col     int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Message)
}

// VarSource allocates fresh variables. *term.Bindings implements it;
// rule scripts use a throwaway localVars since stored clauses are
// renamed at selection time anyway.
type VarSource interface {
	Fresh(name string) term.Variable
}

// localVars is a self-contained variable allocator for parsing rule
// scripts outside any session.
type localVars struct{ next int64 }

func (l *localVars) Fresh(name string) term.Variable {
	l.next++
	return term.Variable{Name: name, ID: l.next}
}

// ParseProgram parses a rule script into clauses, in declaration order.
func ParseProgram(src string) ([]term.Rule, error) {
	p, err := newParser(src, &localVars{})
	if err != nil {
		return nil, err
	}

	var rules []term.Rule
	for p.tok.typ != tokEOF {
		p.scope = make(map[string]term.Variable)
		rule, err := p.clause()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// ParseQuery parses a single query goal (a clause body followed by '.').
// Named variables are returned in order of first occurrence; they are
// allocated from vars so the caller can read their bindings back out of
// the session after solving.
func ParseQuery(src string, vars VarSource) (term.Term, []term.Variable, error) {
	p, err := newParser(src, vars)
	if err != nil {
		return nil, nil, err
	}
	p.scope = make(map[string]term.Variable)

	goal, err := p.conjunction()
	if err != nil {
		return nil, nil, err
	}
	if err := p.expect(tokDot); err != nil {
		return nil, nil, err
	}
	if p.tok.typ != tokEOF {
		return nil, nil, p.unexpected("end of query")
	}
	return goal, p.queryVars, nil
}

type parser struct {
	lex       *lexer
	tok       token
	vars      VarSource
	scope     map[string]term.Variable
	queryVars []term.Variable
}

func newParser(src string, vars VarSource) (*parser, error) {
	p := &parser{lex: newLexer(src), vars: vars}
	return p, p.advance()
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) expect(typ tokenType) error {
	if p.tok.typ != typ {
		return p.unexpected(typ.String())
	}
	return p.advance()
}

func (p *parser) unexpected(want string) error {
	return &Error{
		Line:    p.tok.line,
		Col:     p.tok.col,
		Message: fmt.Sprintf("expected %s, found %s", want, p.describe()),
	}
}

func (p *parser) describe() string {
	switch p.tok.typ {
	case tokAtom, tokVariable:
		return fmt.Sprintf("%s %q", p.tok.typ, p.tok.text)
	case tokNumber:
		return fmt.Sprintf("number %d", p.tok.num)
	default:
		return p.tok.typ.String()
	}
}

// clause parses `head.` or `head :- body.`
func (p *parser) clause() (term.Rule, error) {
	head, err := p.term()
	if err != nil {
		return term.Rule{}, err
	}
	if _, callable := term.IndicatorOf(head); !callable {
		return term.Rule{}, &Error{Line: p.tok.line, Col: p.tok.col,
			Message: "clause head must be an atom or struct"}
	}

	var body term.Term
	if p.tok.typ == tokImplies {
		if err := p.advance(); err != nil {
			return term.Rule{}, err
		}
		body, err = p.conjunction()
		if err != nil {
			return term.Rule{}, err
		}
	}
	if err := p.expect(tokDot); err != nil {
		return term.Rule{}, err
	}
	return term.Rule{Head: head, Body: body}, nil
}

// conjunction parses `term (, term)*` into a right-associated comma chain.
func (p *parser) conjunction() (term.Term, error) {
	var goals []term.Term
	for {
		g, err := p.term()
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
		if p.tok.typ != tokComma {
			return term.Conj(goals...), nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) term() (term.Term, error) {
	switch p.tok.typ {
	case tokAtom:
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.typ != tokLParen {
			return term.Atom(name), nil
		}
		args, err := p.argList()
		if err != nil {
			return nil, err
		}
		return term.Struct{Functor: name, Args: args}, nil

	case tokVariable:
		v := p.variable(p.tok.text)
		return v, p.advance()

	case tokNumber:
		n := term.Number(p.tok.num)
		return n, p.advance()

	case tokLBracket:
		return p.list()

	default:
		return nil, p.unexpected("a term")
	}
}

func (p *parser) argList() ([]term.Term, error) {
	if err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	var args []term.Term
	for {
		a, err := p.term()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.tok.typ == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		return args, p.expect(tokRParen)
	}
}

func (p *parser) list() (term.Term, error) {
	if err := p.expect(tokLBracket); err != nil {
		return nil, err
	}
	if p.tok.typ == tokRBracket {
		return term.Nil, p.advance()
	}

	var elems []term.Term
	for {
		e, err := p.term()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.tok.typ == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	tail := term.Term(term.Nil)
	if p.tok.typ == tokBar {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var err error
		tail, err = p.term()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokRBracket); err != nil {
		return nil, err
	}
	return term.ListWithTail(tail, elems...), nil
}

// variable resolves a variable name within the current scope. "_" is
// fresh at every occurrence and never reported as a query variable.
func (p *parser) variable(name string) term.Variable {
	if name == "_" {
		return p.vars.Fresh("")
	}
	if v, ok := p.scope[name]; ok {
		return v
	}
	v := p.vars.Fresh(name)
	p.scope[name] = v
	p.queryVars = append(p.queryVars, v)
	return v
}
