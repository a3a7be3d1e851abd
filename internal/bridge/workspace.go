package bridge

import (
	"github.com/quillon/hornbeam/internal/engine"
	"github.com/quillon/hornbeam/internal/term"
)

// workspace implements workspace/1.
//
// Bound path: deterministic membership test. Unbound: branches over
// all workspace paths in registration order.
func workspace(call *engine.Call) ([]term.Term, error) {
	snap, err := call.Snapshot()
	if err != nil {
		return nil, err
	}
	path, bound, err := atomArg(call, 0)
	if err != nil {
		return nil, err
	}

	if bound {
		_, ok := snap.ByPath(path)
		return deterministic(ok), nil
	}

	workspaces := snap.Workspaces()
	alts := make([]term.Term, len(workspaces))
	for i, w := range workspaces {
		alts[i] = term.Eq(call.Args[0], term.Atom(w.RelPath))
	}
	return alts, nil
}

// workspaceIdent implements workspace_ident/2, resolving between a
// workspace path and its canonical identifier.
//
//   - Path bound: resolves its unique identifier deterministically.
//   - Identifier bound, path unbound: enumerates every workspace
//     sharing that identifier (there may be more than one).
//   - Both unbound: one (path, identifier) pair per workspace.
//
// No match is a silent failure, not an error.
func workspaceIdent(call *engine.Call) ([]term.Term, error) {
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

	switch {
	case pathBound:
		w, ok := snap.ByPath(path)
		if !ok {
			return nil, nil
		}
		return []term.Term{term.Eq(call.Args[1], term.Atom(w.Ident))}, nil

	case identBound:
		matches := snap.ByIdent(ident)
		alts := make([]term.Term, len(matches))
		for i, w := range matches {
			alts[i] = term.Eq(call.Args[0], term.Atom(w.RelPath))
		}
		return alts, nil

	default:
		workspaces := snap.Workspaces()
		alts := make([]term.Term, len(workspaces))
		for i, w := range workspaces {
			alts[i] = term.Conj(
				term.Eq(call.Args[0], term.Atom(w.RelPath)),
				term.Eq(call.Args[1], term.Atom(w.Ident)),
			)
		}
		return alts, nil
	}
}
