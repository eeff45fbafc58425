package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/panbanda/pylens/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func relAll(t *testing.T, root string, files []string) []string {
	t.Helper()
	rel := make([]string, len(files))
	for i, f := range files {
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		rel[i] = filepath.ToSlash(r)
	}
	return rel
}

func TestNewScanner(t *testing.T) {
	s := NewScanner(nil)
	if s == nil {
		t.Fatal("NewScanner(nil) returned nil")
	}
	if s.config == nil {
		t.Error("scanner.config should not be nil when passing nil")
	}

	cfg := config.DefaultConfig()
	s = NewScanner(cfg)
	if s.config != cfg {
		t.Error("scanner.config should be the provided config")
	}
}

func TestScanDirFindsSortedPythonFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"b.py":            "",
		"a.py":            "",
		"a/z.py":          "",
		"pkg/__init__.py": "",
		"pkg/mod.py":      "",
		"notes.txt":       "",
		"stub.pyi":        "",
		"README.md":       "",
	})

	files, err := NewScanner(nil).ScanDir(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"a/z.py", "a.py", "b.py", "pkg/__init__.py", "pkg/mod.py"}, relAll(t, tmpDir, files))
}

func TestScanDirExcludesCacheAndHidden(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"keep.py":                         "",
		"__pycache__/keep.cpython-312.py": "",
		"pkg/__pycache__/mod.py":          "",
		".venv/lib/site.py":               "",
		"pkg/.hidden/mod.py":              "",
		"pkg/.secret.py":                  "",
		"pkg/visible.py":                  "",
	})

	files, err := NewScanner(nil).ScanDir(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"keep.py", "pkg/visible.py"}, relAll(t, tmpDir, files))
}

func TestScanDirHiddenRootIsAllowed(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), ".project")
	writeTree(t, tmpDir, map[string]string{"main.py": ""})

	files, err := NewScanner(nil).ScanDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, files, 1, "only components below the root are checked")
}

func TestScanDirConfigPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"app.py":              "",
		"migrations/0001.py":  "",
		"tests/test_app.py":   "",
		"tests/conftest.py":   "",
		"src/generated_pb.py": "",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = []string{"migrations/", "test_*.py", "*_pb.py"}

	files, err := NewScanner(cfg).ScanDir(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"app.py", "tests/conftest.py"}, relAll(t, tmpDir, files))
}

func TestScanDirGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, ".git"), 0755))
	writeTree(t, tmpDir, map[string]string{
		".gitignore":     "build/\n",
		"src/app.py":     "",
		"build/lib.py":   "",
		"src/build/x.py": "",
	})

	cfg := config.DefaultConfig()
	files, err := NewScanner(cfg).ScanDir(filepath.Join(tmpDir, "src"))
	require.NoError(t, err)
	assert.Len(t, files, 2, "gitignore is off by default")

	cfg.Exclude.Gitignore = true
	files, err = NewScanner(cfg).ScanDir(filepath.Join(tmpDir, "src"))
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py"}, relAll(t, filepath.Join(tmpDir, "src"), files))
}

func TestScanDirSkipsEscapingSymlinks(t *testing.T) {
	outside := t.TempDir()
	writeTree(t, outside, map[string]string{"secret.py": ""})

	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{"real.py": ""})
	if err := os.Symlink(filepath.Join(outside, "secret.py"), filepath.Join(tmpDir, "link.py")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(tmpDir, "real.py"), filepath.Join(tmpDir, "alias.py")))

	files, err := NewScanner(nil).ScanDir(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"alias.py", "real.py"}, relAll(t, tmpDir, files))
}

func TestCollect(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"mod.py":    "",
		"notes.txt": "",
	})

	s := NewScanner(nil)

	t.Run("missing path", func(t *testing.T) {
		_, err := s.Collect(filepath.Join(tmpDir, "nope"))
		assert.ErrorIs(t, err, ErrPathNotFound)
	})

	t.Run("single python file", func(t *testing.T) {
		path := filepath.Join(tmpDir, "mod.py")
		files, err := s.Collect(path)
		require.NoError(t, err)
		assert.Equal(t, []string{path}, files)
	})

	t.Run("single non-python file", func(t *testing.T) {
		_, err := s.Collect(filepath.Join(tmpDir, "notes.txt"))
		assert.ErrorIs(t, err, ErrNoFiles)
	})

	t.Run("directory", func(t *testing.T) {
		files, err := s.Collect(tmpDir)
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := s.Collect(t.TempDir())
		assert.ErrorIs(t, err, ErrNoFiles)
	})
}

func TestComparePaths(t *testing.T) {
	paths := []string{"b.py", "a.py", "a/b.py", "a/a/c.py", "A.py"}
	SortPaths(paths)
	assert.Equal(t, []string{"A.py", "a/a/c.py", "a/b.py", "a.py", "b.py"}, paths)

	assert.Equal(t, 0, ComparePaths("x/y.py", "x/y.py"))
	assert.Negative(t, ComparePaths("x", "x/y.py"))
}

func TestIsWithinRoot(t *testing.T) {
	assert.True(t, isWithinRoot("/root/dir/file.py", "/root/dir"))
	assert.True(t, isWithinRoot("/root/dir", "/root/dir"))
	assert.False(t, isWithinRoot("/root/dir2/file.py", "/root/dir"))
	assert.False(t, isWithinRoot("/etc/passwd", "/root/dir"))
}
