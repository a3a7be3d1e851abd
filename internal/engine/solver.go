package engine

import (
	"fmt"

	"github.com/quillon/hornbeam/internal/parser"
	"github.com/quillon/hornbeam/internal/session"
	"github.com/quillon/hornbeam/internal/term"
)

// DefaultMaxSteps is the default resolution step quota per query.
// Dependency-graph searches are tiny; anything approaching this limit
// is a runaway rule set, not a legitimate workload.
const DefaultMaxSteps = 1_000_000

// goalList is an immutable goal stack node. Stacks only ever grow by
// prepending, so choice branches safely share tails.
type goalList struct {
	goal term.Term
	next *goalList
}

// choicePoint stores the untried alternatives of one resolution step.
//
// Exactly one of clauses or branches is populated: clauses for a
// declarative predicate (head unification still pending), branches for
// native-supplied continuation goals. mark is the trail position taken
// before the first alternative ran; every retry truncates back to it.
type choicePoint struct {
	goal     term.Term // original goal, for clause head unification
	cont     *goalList // continuation shared by all alternatives
	clauses  []term.Rule
	branches []term.Term
	mark     int
	parent   *choicePoint
}

// SolverOption configures a solver.
type SolverOption func(*Solver)

// WithMaxSteps overrides the resolution step quota.
func WithMaxSteps(n int) SolverOption {
	return func(s *Solver) {
		s.maxSteps = n
	}
}

// Solver enumerates the solutions of one query goal. Create one per
// query; it is not safe for concurrent use, but independent solvers
// over the same registry and snapshot are.
type Solver struct {
	reg  *Registry
	sess *session.Session
	bs   *term.Bindings

	goals     *goalList
	cp        *choicePoint
	queryVars []term.Variable
	startMark int

	steps    int
	maxSteps int

	started bool
	done    bool
}

// NewSolver prepares a solver for a goal whose variables live in bs.
// queryVars are the variables reported in solutions, in order.
func NewSolver(reg *Registry, sess *session.Session, bs *term.Bindings, goal term.Term, queryVars []term.Variable, opts ...SolverOption) *Solver {
	s := &Solver{
		reg:       reg,
		sess:      sess,
		bs:        bs,
		goals:     &goalList{goal: goal},
		queryVars: queryVars,
		maxSteps:  DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query parses a query goal and prepares a solver for it. The query's
// variables are allocated in a fresh substitution store owned by the
// solver.
func Query(reg *Registry, sess *session.Session, src string, opts ...SolverOption) (*Solver, error) {
	bs := term.NewBindings()
	goal, vars, err := parser.ParseQuery(src, bs)
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	return NewSolver(reg, sess, bs, goal, vars, opts...), nil
}

// Next resumes the search and returns the next solution, or nil when
// the query is exhausted. After exhaustion the substitution is restored
// to its pre-query state and every further Next returns nil - the
// sequence never silently restarts.
//
// A non-nil error aborts the query; the solver is exhausted afterwards.
func (s *Solver) Next() (*Solution, error) {
	if s.done {
		return nil, nil
	}
	if !s.started {
		s.started = true
		s.startMark = s.bs.Mark()
	} else {
		// Re-enter the search by failing into the latest choice point.
		if !s.backtrack() {
			s.finish()
			return nil, nil
		}
	}
	return s.run()
}

// run drives resolution until a success, exhaustion, or an error.
func (s *Solver) run() (*Solution, error) {
	for {
		if s.goals == nil {
			return s.capture(), nil
		}

		s.steps++
		if s.steps > s.maxSteps {
			return nil, s.abort(&ResolutionError{
				Code:    ErrCodeQuotaExceeded,
				Message: fmt.Sprintf("query exceeded %d resolution steps", s.maxSteps),
			})
		}

		goal := s.bs.Walk(s.goals.goal)
		rest := s.goals.next

		switch g := goal.(type) {
		case term.Variable:
			return nil, s.abort(&ResolutionError{
				Code:    ErrCodeInstantiation,
				Message: "goal is an unbound variable",
			})

		case term.Number:
			return nil, s.abort(&ResolutionError{
				Code:    ErrCodeInstantiation,
				Message: fmt.Sprintf("goal %d is not callable", int64(g)),
			})

		case term.Atom:
			switch g {
			case term.True:
				s.goals = rest
				continue
			case term.Fail:
				if !s.backtrack() {
					s.finish()
					return nil, nil
				}
				continue
			}
			if ok, err := s.dispatch(goal, term.Indicator{Name: string(g)}, nil, rest); err != nil {
				return nil, s.abort(err)
			} else if !ok {
				s.finish()
				return nil, nil
			}

		case term.Struct:
			if g.Functor == term.FunctorConj && len(g.Args) == 2 {
				s.goals = &goalList{goal: g.Args[0], next: &goalList{goal: g.Args[1], next: rest}}
				continue
			}
			if g.Functor == term.FunctorUnify && len(g.Args) == 2 {
				mark := s.bs.Mark()
				if term.Unify(g.Args[0], g.Args[1], s.bs) {
					s.goals = rest
					continue
				}
				s.bs.Undo(mark)
				if !s.backtrack() {
					s.finish()
					return nil, nil
				}
				continue
			}
			ind := term.Indicator{Name: g.Functor, Arity: len(g.Args)}
			if ok, err := s.dispatch(goal, ind, g.Args, rest); err != nil {
				return nil, s.abort(err)
			} else if !ok {
				s.finish()
				return nil, nil
			}
		}
	}
}

// dispatch resolves one predicate goal: it builds the choice point for
// the goal's alternatives and selects the first runnable one. ok=false
// means the search space is exhausted.
func (s *Solver) dispatch(goal term.Term, ind term.Indicator, args []term.Term, cont *goalList) (bool, error) {
	pred, exists := s.reg.lookup(ind)
	if !exists {
		return false, &ResolutionError{
			Code:    ErrCodeUnknownPredicate,
			Message: "predicate is not defined",
			Pred:    ind,
		}
	}

	// The mark is taken before any alternative runs so that
	// backtracking through this choice point undoes everything each
	// alternative did, announced bindings included.
	cp := &choicePoint{
		goal:   goal,
		cont:   cont,
		mark:   s.bs.Mark(),
		parent: s.cp,
	}

	if pred.native != nil {
		branches, err := pred.native(&Call{Pred: ind, Args: args, solver: s})
		if err != nil {
			return false, err
		}
		cp.branches = branches
	} else {
		cp.clauses = pred.clauses
	}

	s.cp = cp
	return s.backtrack(), nil
}

// backtrack fails into the most recent choice point with alternatives
// left: it truncates the trail to the choice point's mark and installs
// the next alternative's goal stack. Returns false when every choice
// point is exhausted.
func (s *Solver) backtrack() bool {
	for s.cp != nil {
		cp := s.cp
		s.bs.Undo(cp.mark)
		if s.redo(cp) {
			return true
		}
		s.cp = cp.parent
	}
	return false
}

// redo tries cp's next alternative. The trail is already at cp.mark.
func (s *Solver) redo(cp *choicePoint) bool {
	for len(cp.clauses) > 0 {
		clause := cp.clauses[0]
		cp.clauses = cp.clauses[1:]

		renamed := term.Rule{Head: s.bs.Rename(clause.Head)}
		if clause.Body != nil {
			// Rename head and body together so shared variables stay shared.
			both := s.bs.Rename(term.NewStruct(":-", clause.Head, clause.Body)).(term.Struct)
			renamed = term.Rule{Head: both.Args[0], Body: both.Args[1]}
		}

		if term.Unify(renamed.Head, cp.goal, s.bs) {
			s.goals = cp.cont
			if renamed.Body != nil {
				s.goals = &goalList{goal: renamed.Body, next: cp.cont}
			}
			return true
		}
		s.bs.Undo(cp.mark)
	}

	if len(cp.branches) > 0 {
		branch := cp.branches[0]
		cp.branches = cp.branches[1:]
		s.goals = &goalList{goal: branch, next: cp.cont}
		return true
	}
	return false
}

// capture records the current bindings of the query variables as a
// solution. Terms are resolved deeply; variables remaining in the
// result are the explicit "still unbound" markers.
func (s *Solver) capture() *Solution {
	sol := &Solution{
		names: make([]string, 0, len(s.queryVars)),
		vals:  make(map[string]term.Term, len(s.queryVars)),
	}
	for _, v := range s.queryVars {
		sol.names = append(sol.names, v.Name)
		sol.vals[v.Name] = s.bs.Resolve(v)
	}
	return sol
}

// abort terminates the query on an error, unwinding all bindings.
func (s *Solver) abort(err error) error {
	s.finish()
	return err
}

// finish marks the query exhausted and restores the substitution to
// its pre-query state.
func (s *Solver) finish() {
	s.bs.Undo(s.startMark)
	s.cp = nil
	s.goals = nil
	s.done = true
}
