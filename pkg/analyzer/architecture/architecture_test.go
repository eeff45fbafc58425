package architecture

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/pylens/internal/scanner"
	"github.com/panbanda/pylens/pkg/parser"
)

// writeTree creates files under a temp dir and returns the dir and the
// sorted file list.
func writeTree(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		paths = append(paths, path)
	}
	scanner.SortPaths(paths)
	return dir, paths
}

func analyze(t *testing.T, files map[string]string) (string, *Analysis) {
	t.Helper()
	dir, paths := writeTree(t, files)
	analysis, err := New(WithRoot(dir)).Analyze(context.Background(), paths)
	require.NoError(t, err)
	return dir, analysis
}

func TestExtractImports(t *testing.T) {
	code := `from __future__ import annotations
import os
import a.b.c
import x.y as z, json
from pkg.sub import thing
from .sibling import thing
from ..parent.mod import thing
from . import local
from .. import up


def f():
    import inner
`
	p := parser.New()
	defer p.Close()

	unit, err := p.Parse(context.Background(), "imports.py", []byte(code))
	require.NoError(t, err)
	defer unit.Tree.Close()

	assert.Equal(t, []string{
		"__future__",
		"__relative_1__",
		"__relative_2__",
		"a",
		"inner",
		"json",
		"os",
		"parent",
		"pkg",
		"sibling",
		"x",
	}, ExtractImports(unit))
}

func TestLayerOf(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"src/domain/model.py", 0},
		{"src/Entities/user.py", 0},
		{"app/services/billing.py", 1},
		{"app/use_cases/checkout.py", 1},
		{"web/controllers/home.py", 2},
		{"infra/db/session.py", 3},
		{"core/infrastructure/x.py", 0},
		{"lib/util.py", NoLayer},
		{"domain.py", NoLayer},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, LayerOf(tt.path))
		})
	}
}

func TestLayerName(t *testing.T) {
	assert.Equal(t, "domain/core", LayerName(0))
	assert.Equal(t, "application/services", LayerName(1))
	assert.Equal(t, "interface/adapters", LayerName(2))
	assert.Equal(t, "infrastructure", LayerName(3))
	assert.Equal(t, "layer 7", LayerName(7))
}

func TestTwoModuleCycle(t *testing.T) {
	dir, analysis := analyze(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "import a\n",
	})

	require.Len(t, analysis.Cycles, 1)
	assert.Equal(t, []string{"a", "b", "a"}, analysis.Cycles[0])
	assert.Equal(t, [][]string{{"a", "b"}}, analysis.Components)

	want := strings.Join([]string{
		"# Architecture Analysis: " + dir,
		"",
		"Analyzed 2 files.",
		"",
		"## Circular Dependencies",
		"",
		"The following circular dependencies were detected:",
		"",
		"- a → b → a",
		"",
		"**Recommendation**: Break cycles by introducing interfaces or",
		"moving shared code to a separate module.",
		"",
		"## Dependency Graph",
		"",
		"- `a` → `b`",
		"- `b` → `a`",
		"",
	}, "\n")
	assert.Equal(t, want, analysis.Document().String())
	assert.Equal(t, []string{RecommendCycles}, analysis.Recommendations())
}

func TestThreeModuleCycleReportedOnce(t *testing.T) {
	_, analysis := analyze(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "import c\n",
		"c.py": "import a\n",
	})

	require.Len(t, analysis.Cycles, 1)
	assert.Equal(t, []string{"a", "b", "c", "a"}, analysis.Cycles[0])

	md := analysis.Document().String()
	assert.Contains(t, strings.ToLower(md), "circular")
	assert.Equal(t, 1, strings.Count(md, "- a → b → c → a"))
}

func TestNestedCyclesAreDistinct(t *testing.T) {
	_, analysis := analyze(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "import c\nimport a\n",
		"c.py": "import a\n",
	})

	assert.Equal(t, [][]string{
		{"a", "b", "a"},
		{"a", "b", "c", "a"},
	}, analysis.Cycles)
	assert.Equal(t, [][]string{{"a", "b", "c"}}, analysis.Components)
}

func TestDistinctCycles(t *testing.T) {
	cycles := [][]string{
		{"a", "b", "c", "a"},
		{"b", "c", "a", "b"},
		{"c", "a", "c"},
		{"x", "x"},
	}
	assert.Equal(t, [][]string{
		{"a", "b", "c", "a"},
		{"c", "a", "c"},
	}, DistinctCycles(cycles))
}

func TestFindCyclesFromEveryStart(t *testing.T) {
	g := BuildGraph([]Module{
		{Key: "c", Imports: []string{"a"}},
		{Key: "a", Imports: []string{"b"}},
		{Key: "b", Imports: []string{"c"}},
	})

	cycles := g.FindCycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"c", "a", "b", "c"}, cycles[0])
}

func TestLayerViolation(t *testing.T) {
	_, analysis := analyze(t, map[string]string{
		"project/domain/order.py":              "import repository\n",
		"project/infrastructure/repository.py": "import os\n",
	})

	require.Len(t, analysis.Violations, 1)
	v := analysis.Violations[0]
	assert.Equal(t, "order", v.Importer)
	assert.Equal(t, "repository", v.Imported)
	assert.Equal(t, 0, v.FromLayer)
	assert.Equal(t, 3, v.ToLayer)

	md := analysis.Document().String()
	assert.Contains(t, md, "## Layer Violations")
	assert.Contains(t, md, "- `order` (domain/core) imports `repository` (infrastructure)")
	assert.NotContains(t, md, "## Summary")
	assert.Equal(t, []string{RecommendViolations}, analysis.Recommendations())
}

func TestOuterImportingInnerIsAllowed(t *testing.T) {
	_, analysis := analyze(t, map[string]string{
		"project/domain/order.py":              "class Order:\n    pass\n",
		"project/infrastructure/repository.py": "import order\n",
	})

	assert.Empty(t, analysis.Violations)
	assert.False(t, analysis.HasFindings())

	md := analysis.Document().String()
	assert.NotContains(t, md, "## Layer Violations")
	assert.True(t, strings.HasSuffix(md, "## Dependency Graph\n\n- `repository` → `order`\n\n## Summary\n\nNo circular dependencies or layer violations found."))
}

func TestNoDependencies(t *testing.T) {
	dir, analysis := analyze(t, map[string]string{
		"main.py": "import os\nimport sys\n",
	})

	want := strings.Join([]string{
		"# Architecture Analysis: " + dir,
		"",
		"Analyzed 1 file.",
		"",
		"## Dependency Graph",
		"",
		"No internal dependencies between modules.",
		"",
		"## Summary",
		"",
		"No circular dependencies or layer violations found.",
	}, "\n")
	assert.Equal(t, want, analysis.Document().String())
	assert.Empty(t, analysis.Centrality)
}

// Files that share a stem collapse into one graph vertex, and the file
// discovered last wins. Here a/util.py's import of helpers is lost because
// b/util.py replaces it.
func TestStemCollisionMergesModules(t *testing.T) {
	_, analysis := analyze(t, map[string]string{
		"a/util.py":  "import helpers\n",
		"b/util.py":  "X = 1\n",
		"helpers.py": "Y = 2\n",
	})

	require.Len(t, analysis.Modules, 2)
	assert.Equal(t, "util", analysis.Modules[0].Key)
	assert.Equal(t, "b.util", analysis.Modules[0].Name)
	assert.Equal(t, "helpers", analysis.Modules[1].Key)
	assert.Empty(t, analysis.Graph)
}

func TestRelativeImportsAreNotResolved(t *testing.T) {
	_, analysis := analyze(t, map[string]string{
		"pkg/a.py": "from . import b\n",
		"pkg/b.py": "from . import a\n",
	})

	assert.Empty(t, analysis.Cycles)
	assert.Empty(t, analysis.Graph)
	assert.Equal(t, []string{"__relative_1__"}, analysis.Modules[0].Imports)
}

func TestRelativeImportWithModuleIsMatched(t *testing.T) {
	_, analysis := analyze(t, map[string]string{
		"pkg/a.py": "from .b import thing\n",
		"pkg/b.py": "thing = 1\n",
	})

	require.Len(t, analysis.Graph, 1)
	assert.Equal(t, Dependency{Module: "a", DependsOn: []string{"b"}}, analysis.Graph[0])
}

func TestSkipsUnparsable(t *testing.T) {
	_, analysis := analyze(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "def broken(:\n",
	})

	assert.Equal(t, 2, analysis.FileCount)
	require.Len(t, analysis.Skipped, 1)
	require.Len(t, analysis.Modules, 1)
	assert.Empty(t, analysis.Graph, "an unparsable file is not a vertex")
}

func TestCentrality(t *testing.T) {
	_, analysis := analyze(t, map[string]string{
		"a.py":   "import hub\n",
		"b.py":   "import hub\n",
		"c.py":   "import hub\n",
		"hub.py": "X = 1\n",
	})

	require.NotEmpty(t, analysis.Centrality)
	assert.Equal(t, "hub", analysis.Centrality[0].Module)
}

func TestDisplayName(t *testing.T) {
	base := filepath.Join("root", "src")
	assert.Equal(t, "pkg.mod", displayName(base, filepath.Join(base, "pkg", "mod.py")))
	assert.Equal(t, "mod", displayName("", filepath.Join("x", "mod.py")))
}

func TestRenderText(t *testing.T) {
	_, analysis := analyze(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "import a\n",
	})

	var buf bytes.Buffer
	require.NoError(t, analysis.RenderText(&buf, false))
	out := buf.String()
	assert.Contains(t, out, "cycle: a -> b -> a")
	assert.Contains(t, out, "MODULE")
}
