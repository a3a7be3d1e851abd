package project

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// pnpmWorkspaceFile lists workspace globs for projects that keep them
// out of the root manifest.
const pnpmWorkspaceFile = "pnpm-workspace.yaml"

type pnpmWorkspace struct {
	Packages []string `yaml:"packages"`
}

// Load reads a project from disk: the root manifest plus every
// workspace matched by the project's workspace globs.
//
// Globs come from the root manifest "workspaces" array, or from
// pnpm-workspace.yaml when the manifest declares none. Negated
// ("!"-prefixed) patterns are not supported and are skipped.
//
// Registration order is deterministic: the root workspace first, then
// each pattern in declaration order with its matches sorted.
func Load(root string) (*Snapshot, error) {
	rootManifest, err := readManifest(filepath.Join(root, "package.json"))
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", root, err)
	}

	patterns := rootManifest.Workspaces
	if len(patterns) == 0 {
		patterns, err = readPnpmPatterns(filepath.Join(root, pnpmWorkspaceFile))
		if err != nil {
			return nil, fmt.Errorf("load project %s: %w", root, err)
		}
	}

	candidates, err := findManifestDirs(root)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", root, err)
	}

	workspaces := []*Workspace{NewWorkspace(".", rootManifest)}
	seen := map[string]bool{".": true}
	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, "!") {
			slog.Debug("skipping negated workspace pattern", "pattern", pattern)
			continue
		}
		var matches []string
		for _, rel := range candidates {
			if matchGlob(pattern, rel) {
				matches = append(matches, rel)
			}
		}
		sort.Strings(matches)
		for _, rel := range matches {
			if seen[rel] {
				continue
			}
			seen[rel] = true
			m, err := readManifest(filepath.Join(root, filepath.FromSlash(rel), "package.json"))
			if err != nil {
				return nil, fmt.Errorf("load workspace %s: %w", rel, err)
			}
			workspaces = append(workspaces, NewWorkspace(rel, m))
		}
	}

	slog.Debug("project loaded", "root", root, "workspaces", len(workspaces))
	return NewSnapshot(workspaces)
}

func readManifest(file string) (*Manifest, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return m, nil
}

func readPnpmPatterns(file string) ([]string, error) {
	data, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ws pnpmWorkspace
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return ws.Packages, nil
}

// findManifestDirs collects every directory under root (excluding the
// root itself and anything under node_modules) that holds a
// package.json, as sorted forward-slashed relative paths.
func findManifestDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p == root {
			return nil
		}
		if d.Name() == "node_modules" || strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if _, err := os.Stat(filepath.Join(p, "package.json")); err == nil {
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			dirs = append(dirs, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

// matchGlob matches a forward-slashed relative path against a
// workspace glob. Segments match with path.Match semantics; a "**"
// segment spans zero or more path segments.
func matchGlob(pattern, rel string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(rel, "/"))
}

func matchSegments(pat, segs []string) bool {
	if len(pat) == 0 {
		return len(segs) == 0
	}
	if pat[0] == "**" {
		for i := 0; i <= len(segs); i++ {
			if matchSegments(pat[1:], segs[i:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	ok, err := path.Match(pat[0], segs[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pat[1:], segs[1:])
}
