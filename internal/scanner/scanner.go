package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/pylens/pkg/config"
	"github.com/panbanda/pylens/pkg/parser"
)

// Sentinel errors for the two input conditions a caller reports to the user.
var (
	ErrPathNotFound = errors.New("path not found")
	ErrNoFiles      = errors.New("no python files found")
)

// cacheDir is excluded wherever it appears in a path.
const cacheDir = "__pycache__"

// Scanner finds Python source files under a path.
type Scanner struct {
	config     *config.Config
	matchers   []gitignore.Matcher
	gitMatcher gitignore.Matcher
	gitRoot    string
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// Collect resolves path to the sorted list of files to analyze. A regular
// file qualifies on its own when it has the .py suffix; directories are
// scanned recursively.
func (s *Scanner) Collect(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}

	if !info.IsDir() {
		if parser.DetectLanguage(path) != parser.LangPython {
			return nil, fmt.Errorf("%w in %s", ErrNoFiles, path)
		}
		return []string{path}, nil
	}

	files, err := s.ScanDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, path)
	}
	return files, nil
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns loads exclusion patterns from config and, when enabled,
// from every .gitignore in the enclosing repository. Config patterns are
// relative to the scan root; gitignore patterns are relative to the git root.
func (s *Scanner) loadExcludePatterns(absRoot string) {
	s.matchers = nil
	s.gitMatcher = nil

	var patterns []gitignore.Pattern
	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}
	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}

	if !s.config.Exclude.Gitignore {
		return
	}
	gitRoot := findGitRoot(absRoot)
	if gitRoot == "" {
		return
	}
	gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
	if err != nil || len(gitPatterns) == 0 {
		return
	}
	s.gitRoot = gitRoot
	s.gitMatcher = gitignore.NewMatcher(gitPatterns)
}

// isExcluded checks if a path matches any exclusion pattern.
func (s *Scanner) isExcluded(relPath, absPath string, isDir bool) bool {
	pathParts := strings.Split(relPath, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(pathParts, isDir) {
			return true
		}
	}

	if s.gitMatcher != nil {
		gitRel, err := filepath.Rel(s.gitRoot, absPath)
		if err == nil && !strings.HasPrefix(gitRel, "..") {
			if s.gitMatcher.Match(strings.Split(gitRel, string(filepath.Separator)), isDir) {
				return true
			}
		}
	}
	return false
}

// isHiddenOrCache reports whether a root-relative path lies in a build cache
// or has a component starting with a dot.
func isHiddenOrCache(relPath string) bool {
	if strings.Contains(relPath, cacheDir) {
		return true
	}
	for _, part := range strings.Split(relPath, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." {
			return true
		}
	}
	return false
}

// ScanDir recursively scans a directory for Python files and returns them in
// sorted path order. Symlinks that escape the root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(absRoot)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		if relPath == "." {
			return nil
		}
		absPath := filepath.Join(absRoot, relPath)

		if isHiddenOrCache(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.isExcluded(relPath, absPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
			if info, err := os.Stat(resolved); err != nil || !info.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}

		if s.isExcluded(relPath, absPath, false) {
			return nil
		}
		if parser.DetectLanguage(path) == parser.LangPython {
			files = append(files, path)
		}

		return nil
	})

	SortPaths(files)
	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// SortPaths orders paths component by component, so "a/b.py" sorts before
// "a.py" the same way a directory listing nests.
func SortPaths(paths []string) {
	slices.SortFunc(paths, ComparePaths)
}

// ComparePaths compares two paths component-wise.
func ComparePaths(a, b string) int {
	pa := strings.Split(filepath.ToSlash(a), "/")
	pb := strings.Split(filepath.ToSlash(b), "/")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if c := strings.Compare(pa[i], pb[i]); c != 0 {
			return c
		}
	}
	return len(pa) - len(pb)
}
