package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestLoad_ManifestWorkspaces(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name": "root", "workspaces": ["packages/*"]}`)
	writeFile(t, root, "packages/b/package.json", `{"name": "@acme/b"}`)
	writeFile(t, root, "packages/a/package.json", `{"name": "@acme/a"}`)
	writeFile(t, root, "unrelated/package.json", `{"name": "outside"}`)

	snap, err := Load(root)
	require.NoError(t, err)

	var paths []string
	for _, w := range snap.Workspaces() {
		paths = append(paths, w.RelPath)
	}
	assert.Equal(t, []string{".", "packages/a", "packages/b"}, paths)
}

func TestLoad_PnpmWorkspaceFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name": "root"}`)
	writeFile(t, root, "pnpm-workspace.yaml", "packages:\n  - \"apps/**\"\n")
	writeFile(t, root, "apps/web/package.json", `{"name": "web"}`)
	writeFile(t, root, "apps/services/api/package.json", `{"name": "api"}`)

	snap, err := Load(root)
	require.NoError(t, err)

	var idents []string
	for _, w := range snap.Workspaces() {
		idents = append(idents, w.Ident)
	}
	assert.Equal(t, []string{"root", "api", "web"}, idents)
}

func TestLoad_SkipsNodeModules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name": "root", "workspaces": ["**"]}`)
	writeFile(t, root, "pkg/package.json", `{"name": "pkg"}`)
	writeFile(t, root, "node_modules/dep/package.json", `{"name": "dep"}`)

	snap, err := Load(root)
	require.NoError(t, err)
	require.Len(t, snap.Workspaces(), 2)
	assert.Equal(t, "pkg", snap.Workspaces()[1].Ident)
}

func TestLoad_MissingRootManifest(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestMatchGlob(t *testing.T) {
	cases := []struct {
		pattern, rel string
		want         bool
	}{
		{"packages/*", "packages/a", true},
		{"packages/*", "packages/a/b", false},
		{"packages/**", "packages/a/b", true},
		{"packages/**", "packages", true},
		{"**", "x/y/z", true},
		{"apps/*-service", "apps/user-service", true},
		{"apps/*-service", "apps/user", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchGlob(tc.pattern, tc.rel), "%s vs %s", tc.pattern, tc.rel)
	}
}
