package duplication

import (
	"fmt"
	"io"
	"strconv"

	"github.com/panbanda/pylens/internal/output"
	"github.com/panbanda/pylens/pkg/report"
)

// Title heads the standalone duplication report.
const Title = "Refactoring Analysis"

// Orchestrator recommendations.
const (
	RecommendDuplicates = "Extract duplicated function bodies into a shared module"
	RecommendSameName   = "Rename or consolidate same-name functions with different implementations"
)

// HasFindings reports whether any duplicate or same-name group was found.
func (a *Analysis) HasFindings() bool {
	return len(a.Duplicates) > 0 || len(a.SameName) > 0
}

// Recommendations returns the advice for each kind of group found.
func (a *Analysis) Recommendations() []string {
	var recs []string
	if len(a.Duplicates) > 0 {
		recs = append(recs, RecommendDuplicates)
	}
	if len(a.SameName) > 0 {
		recs = append(recs, RecommendSameName)
	}
	return recs
}

// Document renders the markdown report. The counts line always uses plural
// nouns.
func (a *Analysis) Document() *report.Document {
	var d report.Document
	d.Linef("# %s: %s", Title, a.Root)
	d.Blank()
	d.Linef("Analyzed %d files, found %d functions.", a.FileCount, a.FunctionCount)
	d.Blank()

	if len(a.Duplicates) > 0 {
		d.Heading(2, "Duplicate Function Bodies")
		d.Line("These functions have identical implementations and should be consolidated:")
		d.Blank()
		for _, g := range a.Duplicates {
			d.Linef("### Duplicate group (hash: %s)", g.Hash)
			for _, fn := range g.Functions {
				d.Linef("- `%s` in `%s` (line %d)", fn.Name, fn.File, fn.Line)
			}
			d.Blank()
			d.Line("**Recommendation**: Extract to a shared module and import.")
			d.Blank()
		}
	}

	if len(a.SameName) > 0 {
		d.Heading(2, "Same-Name Functions (Different Implementations)")
		d.Line("These functions share names but have different implementations. Consider:")
		d.Bullets(
			"If they do the same thing: consolidate",
			"If they're intentionally different: rename for clarity",
		)
		d.Blank()
		for _, g := range a.SameName {
			d.Linef("### `%s`", g.Name)
			for _, fn := range g.Functions {
				d.Linef("- `%s` line %d (%d lines)", fn.File, fn.Line, fn.Lines)
			}
			d.Blank()
		}
	}

	if !a.HasFindings() {
		d.Line("No refactoring opportunities found for the specified focus.")
	}
	return &d
}

// RenderMarkdown writes the markdown report.
func (a *Analysis) RenderMarkdown(w io.Writer) error {
	_, err := a.Document().WriteTo(w)
	return err
}

// RenderText writes every grouped function as a table row.
func (a *Analysis) RenderText(w io.Writer, colored bool) error {
	var rows [][]string
	for _, g := range a.Duplicates {
		for _, fn := range g.Functions {
			rows = append(rows, []string{"duplicate " + g.Hash, fn.QualifiedName, fmt.Sprintf("%s:%d", fn.File, fn.Line), strconv.Itoa(fn.Lines)})
		}
	}
	for _, g := range a.SameName {
		for _, fn := range g.Functions {
			rows = append(rows, []string{"same name", fn.QualifiedName, fmt.Sprintf("%s:%d", fn.File, fn.Line), strconv.Itoa(fn.Lines)})
		}
	}
	table := output.NewTable(
		fmt.Sprintf("%s: %s", Title, a.Root),
		[]string{"Group", "Function", "Location", "Lines"},
		rows,
		[]string{report.Plural(a.FileCount, "file"), report.Plural(a.FunctionCount, "function"), "", ""},
		nil,
	)
	return table.RenderText(w, colored)
}

// RenderData returns the analysis for structured output.
func (a *Analysis) RenderData() any {
	return a
}
