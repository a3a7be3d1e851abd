package bridge

import (
	"github.com/quillon/hornbeam/internal/engine"
	"github.com/quillon/hornbeam/internal/project"
	"github.com/quillon/hornbeam/internal/term"
)

// dependencyType implements dependency_type/1. It always offers the
// three partitions in their fixed order; when the argument is already
// bound the engine's unification filters down to the match.
func dependencyType(call *engine.Call) ([]term.Term, error) {
	if _, _, err := atomArg(call, 0); err != nil {
		return nil, err
	}
	alts := make([]term.Term, len(project.DependencyTypes))
	for i, t := range project.DependencyTypes {
		alts[i] = term.Eq(call.Args[0], term.Atom(t))
	}
	return alts, nil
}

// workspaceHasDependency implements workspace_has_dependency/4 over
// (Path, Ident, Range, Type).
//
// With the type free, it branches over the partitions, re-posing itself
// with the type fixed in each branch; the per-partition work then runs
// under ordinary backtracking. With the type bound, lookups narrow by
// whatever else is instantiated: a bound ident resolves its declared
// range directly, a free ident enumerates the partition in manifest
// declaration order.
func workspaceHasDependency(call *engine.Call) ([]term.Term, error) {
	snap, err := call.Snapshot()
	if err != nil {
		return nil, err
	}
	path, pathBound, err := atomArg(call, 0)
	if err != nil {
		return nil, err
	}
	ident, identBound, err := atomArg(call, 1)
	if err != nil {
		return nil, err
	}
	typeName, typeBound, err := atomArg(call, 3)
	if err != nil {
		return nil, err
	}

	if !typeBound {
		alts := make([]term.Term, len(project.DependencyTypes))
		for i, t := range project.DependencyTypes {
			alts[i] = term.Conj(
				term.Eq(call.Args[3], term.Atom(t)),
				term.NewStruct("workspace_has_dependency",
					call.Args[0], call.Args[1], call.Args[2], term.Atom(t)),
			)
		}
		return alts, nil
	}

	depType, ok := project.ParseDependencyType(typeName)
	if !ok {
		return nil, nil
	}
	if !pathBound {
		return nil, nil
	}
	w, ok := snap.ByPath(path)
	if !ok {
		return nil, nil
	}
	set := w.Dependencies(depType)

	if identBound {
		dep, ok := set.Get(ident)
		if !ok {
			return nil, nil
		}
		return []term.Term{term.Eq(call.Args[2], term.Atom(dep.Range))}, nil
	}

	deps := set.All()
	alts := make([]term.Term, len(deps))
	for i, dep := range deps {
		alts[i] = term.Conj(
			term.Eq(call.Args[1], term.Atom(dep.Ident)),
			term.Eq(call.Args[2], term.Atom(dep.Range)),
		)
	}
	return alts, nil
}
