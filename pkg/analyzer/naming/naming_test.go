package naming

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		kinds []Kind
	}{
		{"calculate_total", nil},
		{"calculateTotal", []Kind{KindCamelCase}},
		{"getHTTPResponse", []Kind{KindCamelCase}},
		{"f", []Kind{KindTooShort}},
		{"é", []Kind{KindTooShort}},
		{"_", nil},
		{"__init__", nil},
		{"__x__", nil},
		{"_privateHelper", nil},
		{"get_Value", nil},
		{"CalculateTotal", nil},
		{"x1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Check(tt.name)
			var kinds []Kind
			for _, issue := range issues {
				kinds = append(kinds, issue.Kind)
				assert.Equal(t, tt.name, issue.Name)
			}
			assert.Equal(t, tt.kinds, kinds)
		})
	}
}

func TestCheckSuggestions(t *testing.T) {
	issues := Check("calculateTotal")
	require.Len(t, issues, 1)
	assert.Equal(t, "Use snake_case: calculate_total", issues[0].Suggestion)

	issues = Check("q")
	require.Len(t, issues, 1)
	assert.Equal(t, "Use a descriptive name that explains the function's purpose", issues[0].Suggestion)
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "calculate_total", ToSnakeCase("calculateTotal"))
	assert.Equal(t, "get_h_t_t_p_response", ToSnakeCase("getHTTPResponse"))
	assert.Equal(t, "lower", ToSnakeCase("lower"))
	assert.Equal(t, "leading", ToSnakeCase("Leading"))
}

func analyzeCode(t *testing.T, files map[string]string) *Analysis {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.py", "b.py", "c.py"} {
		content, ok := files[name]
		if !ok {
			continue
		}
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		paths = append(paths, path)
	}

	analysis, err := New(WithRoot("src")).Analyze(context.Background(), paths)
	require.NoError(t, err)
	return analysis
}

func TestAnalyzeReport(t *testing.T) {
	analysis := analyzeCode(t, map[string]string{
		"a.py": "def calculateTotal(items):\n    return sum(items)\n\n\ndef f():\n    pass\n",
		"b.py": "class Thing:\n    def __init__(self):\n        pass\n\n    def getValue(self):\n        return 1\n",
	})

	assert.Equal(t, 2, analysis.FileCount)
	assert.Equal(t, 4, analysis.FunctionCount)
	require.Len(t, analysis.Issues, 3)
	assert.Equal(t, []string{RecommendTooShort, RecommendCamelCase}, analysis.Recommendations())

	want := strings.Join([]string{
		"# Naming Analysis: src",
		"",
		"Analyzed 2 files, found 4 functions.",
		"",
		"## Naming Convention Issues",
		"",
		"### Single-Letter Names",
		"",
		"Function names should be descriptive:",
		"",
		"- `f` in `a.py` (line 5)",
		"",
		"### CamelCase Instead of snake_case",
		"",
		"Python conventions prefer snake_case for functions:",
		"",
		"- `calculateTotal` in `a.py` (line 1): Use snake_case: calculate_total",
		"- `getValue` in `b.py` (line 5): Use snake_case: get_value",
		"",
	}, "\n")
	assert.Equal(t, want, analysis.Document().String())
}

func TestAnalyzeClean(t *testing.T) {
	analysis := analyzeCode(t, map[string]string{
		"a.py": "def total(items):\n    return sum(items)\n",
	})

	assert.False(t, analysis.HasFindings())
	assert.Empty(t, analysis.Recommendations())
	assert.Equal(t, 0, analysis.Section().Len())
	assert.Equal(t, "# Naming Analysis: src\n\nAnalyzed 1 file, found 1 function.\n\nNo naming convention issues found.",
		analysis.Document().String())
}

func TestAnalyzeNestedAndAsync(t *testing.T) {
	analysis := analyzeCode(t, map[string]string{
		"a.py": "async def fetchData():\n    def g():\n        pass\n    return g\n",
	})

	require.Len(t, analysis.Issues, 2)
	assert.Equal(t, KindCamelCase, analysis.Issues[0].Kind)
	assert.Equal(t, "fetchData", analysis.Issues[0].Name)
	assert.Equal(t, KindTooShort, analysis.Issues[1].Kind)
	assert.Equal(t, 2, analysis.Issues[1].Line)
	assert.NotEqual(t, analysis.Issues[0].ID, analysis.Issues[1].ID)
}

func TestAnalyzeSkipsUnparsable(t *testing.T) {
	analysis := analyzeCode(t, map[string]string{
		"a.py": "def badName( pass\n",
		"b.py": "def okName():\n    pass\n",
	})

	assert.Equal(t, 2, analysis.FileCount)
	require.Len(t, analysis.Skipped, 1)
	require.Len(t, analysis.Issues, 1)
	assert.Equal(t, "b.py", analysis.Issues[0].File)
}

func TestRenderText(t *testing.T) {
	analysis := analyzeCode(t, map[string]string{"a.py": "def doThing():\n    pass\n"})

	var buf bytes.Buffer
	require.NoError(t, analysis.RenderText(&buf, false))
	assert.Contains(t, buf.String(), "camel_case")
	assert.Contains(t, buf.String(), "a.py:1")
}
