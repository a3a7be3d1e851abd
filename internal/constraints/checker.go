package constraints

import (
	"fmt"
	"log/slog"

	"github.com/quillon/hornbeam/internal/bridge"
	"github.com/quillon/hornbeam/internal/engine"
	"github.com/quillon/hornbeam/internal/project"
	"github.com/quillon/hornbeam/internal/session"
	"github.com/quillon/hornbeam/internal/term"
)

// NullValue is the enforced range or field value meaning "must be
// absent".
const NullValue = "null"

// The generator predicates rule scripts may define.
var (
	genDependency = term.Indicator{Name: "gen_enforced_dependency", Arity: 4}
	genField      = term.Indicator{Name: "gen_enforced_field", Arity: 3}
)

// Option configures a Checker.
type Option func(*Checker)

// WithLogger overrides the checker's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) { c.logger = l }
}

// WithMaxSteps overrides the per-generator resolution step quota.
func WithMaxSteps(n int) Option {
	return func(c *Checker) { c.maxSteps = n }
}

// Checker diffs a rule script's enforcements against a snapshot.
type Checker struct {
	snap     *project.Snapshot
	reg      *engine.Registry
	sess     *session.Session
	logger   *slog.Logger
	maxSteps int
}

// New builds a checker for one snapshot and one rule script. The rules
// run against a registry carrying the full set of domain predicates.
func New(snap *project.Snapshot, rules []term.Rule, opts ...Option) (*Checker, error) {
	reg := engine.NewRegistry()
	if err := bridge.Register(reg); err != nil {
		return nil, err
	}
	if err := reg.AssertProgram(rules); err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	c := &Checker{
		snap:     snap,
		reg:      reg,
		sess:     session.New(snap),
		logger:   slog.Default(),
		maxSteps: engine.DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the checker's session.
func (c *Checker) Close() {
	c.sess.Close()
}

type enforcedDependency struct {
	path   string
	ident  string
	rng    string
	typ    project.DependencyType
	absent bool
}

type enforcedField struct {
	path   string
	field  string
	value  string
	absent bool
}

// Check enumerates both generators and diffs their enforcements against
// the snapshot. Diagnostics come out grouped by workspace in
// registration order, dependencies before fields, each in generator
// solution order.
func (c *Checker) Check() (*Report, error) {
	deps, err := c.enforcedDependencies()
	if err != nil {
		return nil, err
	}
	fields, err := c.enforcedFields()
	if err != nil {
		return nil, err
	}
	c.logger.Debug("enforcements collected",
		"dependencies", len(deps), "fields", len(fields))

	byPath := make(map[string][]Diagnostic)
	for _, e := range deps {
		if d, bad := c.diffDependency(e); bad {
			byPath[e.path] = append(byPath[e.path], d)
		}
	}
	for _, e := range fields {
		if d, bad := c.diffField(e); bad {
			byPath[e.path] = append(byPath[e.path], d)
		}
	}

	report := &Report{}
	for _, w := range c.snap.Workspaces() {
		report.Diagnostics = append(report.Diagnostics, byPath[w.RelPath]...)
	}
	return report, nil
}

func (c *Checker) enforcedDependencies() ([]enforcedDependency, error) {
	if !c.reg.Has(genDependency) {
		return nil, nil
	}
	var out []enforcedDependency
	seen := make(map[enforcedDependency]bool)
	err := c.eachSolution(`gen_enforced_dependency(Path, Ident, Range, Type).`,
		func(sol *engine.Solution) error {
			path, err := solAtom(sol, "Path", genDependency)
			if err != nil {
				return err
			}
			ident, err := solAtom(sol, "Ident", genDependency)
			if err != nil {
				return err
			}
			rng, err := solAtom(sol, "Range", genDependency)
			if err != nil {
				return err
			}
			typName, err := solAtom(sol, "Type", genDependency)
			if err != nil {
				return err
			}
			typ, ok := project.ParseDependencyType(typName)
			if !ok {
				return fmt.Errorf("%s produced unknown dependency type %q", genDependency, typName)
			}
			if _, ok := c.snap.ByPath(path); !ok {
				return fmt.Errorf("%s produced unknown workspace %q", genDependency, path)
			}
			e := enforcedDependency{path: path, ident: ident, typ: typ}
			if rng == NullValue {
				e.absent = true
			} else {
				e.rng = rng
			}
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
			return nil
		})
	return out, err
}

func (c *Checker) enforcedFields() ([]enforcedField, error) {
	if !c.reg.Has(genField) {
		return nil, nil
	}
	var out []enforcedField
	seen := make(map[enforcedField]bool)
	err := c.eachSolution(`gen_enforced_field(Path, Field, Value).`,
		func(sol *engine.Solution) error {
			path, err := solAtom(sol, "Path", genField)
			if err != nil {
				return err
			}
			field, err := solAtom(sol, "Field", genField)
			if err != nil {
				return err
			}
			value, err := solAtom(sol, "Value", genField)
			if err != nil {
				return err
			}
			if _, ok := c.snap.ByPath(path); !ok {
				return fmt.Errorf("%s produced unknown workspace %q", genField, path)
			}
			e := enforcedField{path: path, field: field}
			if value == NullValue {
				e.absent = true
			} else {
				e.value = value
			}
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
			return nil
		})
	return out, err
}

// eachSolution enumerates every solution of one query.
func (c *Checker) eachSolution(src string, fn func(*engine.Solution) error) error {
	solver, err := engine.Query(c.reg, c.sess, src, engine.WithMaxSteps(c.maxSteps))
	if err != nil {
		return err
	}
	for {
		sol, err := solver.Next()
		if err != nil {
			return err
		}
		if sol == nil {
			return nil
		}
		if err := fn(sol); err != nil {
			return err
		}
	}
}

// solAtom reads one generator solution variable as atom text. Numbers
// are accepted and rendered as their literal; anything else means the
// generator left the enforcement underspecified.
func solAtom(sol *engine.Solution, name string, gen term.Indicator) (string, error) {
	t, _ := sol.Get(name)
	switch v := t.(type) {
	case term.Atom:
		return string(v), nil
	case term.Number:
		return fmt.Sprintf("%d", int64(v)), nil
	default:
		return "", fmt.Errorf("%s left %s unresolved (%s)", gen, name, term.String(t))
	}
}

func (c *Checker) diffDependency(e enforcedDependency) (Diagnostic, bool) {
	w, _ := c.snap.ByPath(e.path)
	actual, declared := w.Dependencies(e.typ).Get(e.ident)

	d := Diagnostic{
		WorkspacePath:  e.path,
		Subject:        e.ident,
		DependencyType: e.typ,
	}
	switch {
	case e.absent && declared:
		d.Kind = KindExtraneousDependency
		d.Actual = actual.Range
	case !e.absent && !declared:
		d.Kind = KindMissingDependency
		d.Expected = e.rng
	case !e.absent && actual.Range != e.rng:
		d.Kind = KindInvalidDependency
		d.Expected = e.rng
		d.Actual = actual.Range
	default:
		return Diagnostic{}, false
	}
	return d, true
}

func (c *Checker) diffField(e enforcedField) (Diagnostic, bool) {
	w, _ := c.snap.ByPath(e.path)
	actual, present := w.Field(e.field)

	d := Diagnostic{
		WorkspacePath: e.path,
		Subject:       e.field,
	}
	switch {
	case e.absent && present:
		d.Kind = KindExtraneousField
		d.Actual = actual
	case !e.absent && !present:
		d.Kind = KindMissingField
		d.Expected = e.value
	case !e.absent && actual != e.value:
		d.Kind = KindInvalidField
		d.Expected = e.value
		d.Actual = actual
	default:
		return Diagnostic{}, false
	}
	return d, true
}
