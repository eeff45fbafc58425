package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Language represents a supported programming language.
type Language string

const (
	LangPython  Language = "python"
	LangUnknown Language = "unknown"
)

// Sentinel errors describing why a file could not be turned into a syntax tree.
// Callers treat all of them as "unparsable" and skip the file.
var (
	ErrSyntax   = errors.New("syntax error")
	ErrEncoding = errors.New("invalid utf-8 encoding")
	ErrTooLarge = errors.New("file exceeds size limit")
)

// Parser wraps a tree-sitter parser configured for Python.
// A Parser is not safe for concurrent use; create one per worker.
type Parser struct {
	parser      *sitter.Parser
	maxFileSize int64
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxFileSize rejects sources larger than maxSize bytes (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(p *Parser) {
		p.maxFileSize = maxSize
	}
}

// Unit is one parsed source file. It is never mutated after Parse returns.
type Unit struct {
	Path     string
	Language Language
	Source   []byte
	Tree     *sitter.Tree
}

// Root returns the module node of the unit.
func (u *Unit) Root() *sitter.Node {
	return u.Tree.RootNode()
}

// New creates a new parser instance.
func New(opts ...Option) *Parser {
	p := &Parser{parser: sitter.NewParser()}
	p.parser.SetLanguage(python.GetLanguage())
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses source into a Unit. Sources that are not valid UTF-8, exceed
// the size limit or contain syntax errors are rejected with a sentinel error.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*Unit, error) {
	if p.maxFileSize > 0 && int64(len(source)) > p.maxFileSize {
		return nil, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}
	if !utf8.Valid(source) {
		return nil, fmt.Errorf("%s: %w", path, ErrEncoding)
	}

	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if tree.RootNode().HasError() || hasLegacyStatement(tree.RootNode()) {
		tree.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrSyntax)
	}

	return &Unit{
		Path:     path,
		Language: LangPython,
		Source:   source,
		Tree:     tree,
	}, nil
}

// legacyStatements are Python 2 forms the grammar still accepts but
// Python 3 rejects.
var legacyStatements = map[string]bool{
	"print_statement": true,
	"exec_statement":  true,
}

func hasLegacyStatement(root *sitter.Node) bool {
	found := false
	WalkTyped(root, nil, func(_ *sitter.Node, t string, _ []byte) bool {
		if legacyStatements[t] {
			found = true
		}
		return !found
	})
	return found
}

// IsUnparsable reports whether err means the file could not be analysed,
// as opposed to an I/O or cancellation failure.
func IsUnparsable(err error) bool {
	return errors.Is(err, ErrSyntax) || errors.Is(err, ErrEncoding) || errors.Is(err, ErrTooLarge)
}

// DetectLanguage determines the language from a file path.
// Only the .py suffix qualifies.
func DetectLanguage(path string) Language {
	if filepath.Ext(path) == ".py" {
		return LangPython
	}
	return LangUnknown
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// TypedNodeVisitor visits AST nodes with pre-cached node type to avoid CGO overhead.
type TypedNodeVisitor func(node *sitter.Node, nodeType string, source []byte) bool

// WalkTyped traverses the AST with cached node types to reduce CGO overhead.
func WalkTyped(node *sitter.Node, source []byte, visitor TypedNodeVisitor) {
	if node == nil {
		return
	}

	nodeType := node.Type()
	if !visitor(node, nodeType, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		WalkTyped(node.Child(i), source, visitor)
	}
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
