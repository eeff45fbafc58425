package duplication

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/pylens/internal/testutil"
	"github.com/panbanda/pylens/pkg/parser"
)

func parseFunctions(t *testing.T, code string) ([]parser.FunctionNode, []byte) {
	t.Helper()
	p := parser.New()
	t.Cleanup(p.Close)

	unit, err := p.Parse(context.Background(), "sample.py", []byte(code))
	require.NoError(t, err)
	t.Cleanup(unit.Tree.Close)
	return parser.Functions(unit), unit.Source
}

func TestHashBody(t *testing.T) {
	code := `def a(items):
    """Sum the items."""
    total = 0
    for item in items:
        total += item
    return total


def b(items):
    # different comment
    total = 0
    for item in items:
        total += item  # inline
    return total


def renamed(values):
    total = 0
    for value in values:
        total += value
    return total


def docstring_only():
    """Nothing else."""


def single_quoted():
    return 'x'


def double_quoted():
    return "x"
`
	fns, src := parseFunctions(t, code)
	require.Len(t, fns, 6)

	sums := make(map[string]uint64)
	for _, fn := range fns {
		sum, ok := HashBody(fn, src)
		if fn.Name == "docstring_only" {
			assert.False(t, ok, "docstring-only bodies are not hashed")
			continue
		}
		require.True(t, ok, fn.Name)
		sums[fn.Name] = sum
	}

	assert.Equal(t, sums["a"], sums["b"], "docstrings and comments are ignored")
	assert.NotEqual(t, sums["a"], sums["renamed"], "identifiers are not canonicalized")
	assert.Equal(t, sums["single_quoted"], sums["double_quoted"], "quote style is ignored")
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "00000000", ShortHash(0xff))
	assert.Equal(t, "12345678", ShortHash(0x123456789abcdef0))
}

func TestBodyStatements(t *testing.T) {
	fns, src := parseFunctions(t, "def f():\n    \"\"\"Doc.\"\"\"\n    x = 1\n    return x\n")
	require.Len(t, fns, 1)
	assert.Len(t, BodyStatements(fns[0], src), 2)
}

func TestHashBodyFollowsExpressionStructure(t *testing.T) {
	code := `def bare(a):
    return a


def wrapped(a):
    return ((a))


def paren_doc(a):
    ("Doc.")
    return a


def fstring_first(a):
    f"text"
    return a
`
	fns, src := parseFunctions(t, code)
	require.Len(t, fns, 4)

	sums := make(map[string]uint64)
	for _, fn := range fns {
		sum, ok := HashBody(fn, src)
		require.True(t, ok, fn.Name)
		sums[fn.Name] = sum
	}

	assert.Equal(t, sums["bare"], sums["wrapped"], "redundant parentheses are ignored")
	assert.Equal(t, sums["bare"], sums["paren_doc"], "a parenthesized docstring is still a docstring")
	assert.NotEqual(t, sums["bare"], sums["fstring_first"], "an f-string statement is part of the body")
	assert.Len(t, BodyStatements(fns[3], src), 2)
}

func TestFindDuplicates(t *testing.T) {
	fns := []Function{
		{Name: "load", sum: 1, hashed: true, fileIndex: 0},
		{Name: "load", sum: 1, hashed: true, fileIndex: 0},
		{Name: "save", sum: 2, hashed: true, fileIndex: 0},
		{Name: "save_copy", sum: 2, hashed: true, fileIndex: 1},
		{Name: "empty", fileIndex: 0},
		{Name: "empty", fileIndex: 1},
	}

	groups := FindDuplicates(fns)
	require.Len(t, groups, 1, "repeats within one file are not duplicates")
	assert.Equal(t, 2, groups[0].Files)
	assert.Equal(t, "save", groups[0].Functions[0].Name)
	assert.Equal(t, "save_copy", groups[0].Functions[1].Name)
	assert.Equal(t, ShortHash(2), groups[0].Hash)
}

func TestFindSameName(t *testing.T) {
	fns := []Function{
		{Name: "run", sum: 1, hashed: true, fileIndex: 0},
		{Name: "run", sum: 2, hashed: true, fileIndex: 1},
		{Name: "copy", sum: 3, hashed: true, fileIndex: 0},
		{Name: "copy", sum: 3, hashed: true, fileIndex: 1},
		{Name: "local", sum: 4, hashed: true, fileIndex: 0},
		{Name: "local", sum: 5, hashed: true, fileIndex: 0},
	}

	groups := FindSameName(fns, FindDuplicates(fns))
	require.Len(t, groups, 1)
	assert.Equal(t, "run", groups[0].Name)
	assert.Equal(t, 2, groups[0].Files)
}

// writeFiles writes a.py, b.py and c.py as given and returns them in name
// order.
func writeFiles(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	dir := testutil.WriteTree(t, files)
	var names []string
	for _, name := range []string{"a.py", "b.py", "c.py"} {
		if _, ok := files[name]; ok {
			names = append(names, name)
		}
	}
	return dir, testutil.Paths(dir, names...)
}

func TestAnalyzeReport(t *testing.T) {
	shared := "    total = 0\n    for item in items:\n        total += item\n    return total\n"
	dir, files := writeFiles(t, map[string]string{
		"a.py": "def sum_items(items):\n" + shared + "\n\ndef helper():\n    return 1\n",
		"b.py": "def add_all(items):\n    \"\"\"Adds.\"\"\"\n" + shared + "\n\ndef helper():\n    return 2\n",
	})

	analysis, err := New(WithRoot(dir)).Analyze(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, analysis.Duplicates, 1)
	hash := analysis.Duplicates[0].Hash
	assert.Len(t, hash, 8)

	want := strings.Join([]string{
		"# Refactoring Analysis: " + dir,
		"",
		"Analyzed 2 files, found 4 functions.",
		"",
		"## Duplicate Function Bodies",
		"",
		"These functions have identical implementations and should be consolidated:",
		"",
		"### Duplicate group (hash: " + hash + ")",
		"- `sum_items` in `a.py` (line 1)",
		"- `add_all` in `b.py` (line 1)",
		"",
		"**Recommendation**: Extract to a shared module and import.",
		"",
		"## Same-Name Functions (Different Implementations)",
		"",
		"These functions share names but have different implementations. Consider:",
		"- If they do the same thing: consolidate",
		"- If they're intentionally different: rename for clarity",
		"",
		"### `helper`",
		"- `a.py` line 8 (2 lines)",
		"- `b.py` line 9 (2 lines)",
		"",
	}, "\n")
	assert.Equal(t, want, analysis.Document().String())
	assert.Equal(t, []string{RecommendDuplicates, RecommendSameName}, analysis.Recommendations())
}

func TestAnalyzeRepeatsWithinOneFile(t *testing.T) {
	body := "    value = compute()\n    return value * 2\n"
	dir, files := writeFiles(t, map[string]string{
		"a.py": "def one():\n" + body + "\n\ndef two():\n" + body,
		"b.py": "def other():\n    pass\n",
	})

	analysis, err := New(WithRoot(dir)).Analyze(context.Background(), files)
	require.NoError(t, err)

	assert.Empty(t, analysis.Duplicates)
	assert.Empty(t, analysis.SameName)
	assert.False(t, analysis.HasFindings())
	assert.Equal(t, "# Refactoring Analysis: "+dir+"\n\nAnalyzed 2 files, found 3 functions.\n\nNo refactoring opportunities found for the specified focus.",
		analysis.Document().String())
}

func TestAnalyzeSingleFileCountsStayPlural(t *testing.T) {
	dir, files := writeFiles(t, map[string]string{"a.py": "def f():\n    pass\n"})

	analysis, err := New(WithRoot(dir)).Analyze(context.Background(), files)
	require.NoError(t, err)
	assert.Contains(t, analysis.Document().String(), "Analyzed 1 files, found 1 functions.")
}

func TestAnalyzeEmptyBodiesNeverDuplicate(t *testing.T) {
	dir, files := writeFiles(t, map[string]string{
		"a.py": "def stub_a():\n    \"\"\"Docstring only.\"\"\"\n",
		"b.py": "def stub_b():\n    \"\"\"Docstring only.\"\"\"\n",
	})

	analysis, err := New(WithRoot(dir)).Analyze(context.Background(), files)
	require.NoError(t, err)
	assert.Empty(t, analysis.Duplicates)
}

func TestAnalyzeIncludesAsync(t *testing.T) {
	body := "    data = await fetch()\n    return data\n"
	dir, files := writeFiles(t, map[string]string{
		"a.py": "async def load():\n" + body,
		"b.py": "async def load_again():\n" + body,
	})

	analysis, err := New(WithRoot(dir)).Analyze(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, analysis.Duplicates, 1)
	assert.True(t, analysis.Duplicates[0].Functions[0].Async)
}

func TestAnalyzeSkipsUnparsable(t *testing.T) {
	dir, files := writeFiles(t, map[string]string{
		"a.py": "def broken(:\n",
		"b.py": "def fine():\n    return 1\n",
	})

	analysis, err := New(WithRoot(dir)).Analyze(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 2, analysis.FileCount)
	assert.Equal(t, 1, analysis.FunctionCount)
	assert.Len(t, analysis.Skipped, 1)
}

func TestRenderText(t *testing.T) {
	body := "    return compute() + 1\n"
	dir, files := writeFiles(t, map[string]string{
		"a.py": "def one():\n" + body,
		"b.py": "def two():\n" + body,
	})

	analysis, err := New(WithRoot(dir)).Analyze(context.Background(), files)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, analysis.RenderText(&buf, false))
	assert.Contains(t, buf.String(), "b.py:1")
}
