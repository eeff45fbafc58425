package naming

import (
	"fmt"
	"io"

	"github.com/panbanda/pylens/internal/output"
	"github.com/panbanda/pylens/pkg/report"
)

// Title heads the standalone naming report.
const Title = "Naming Analysis"

// Orchestrator recommendations, one per rule that fired.
const (
	RecommendTooShort  = "Use descriptive names that explain purpose"
	RecommendCamelCase = "Follow Python naming conventions (snake_case for functions)"
)

// ByKind returns the issues of one kind in report order.
func (a *Analysis) ByKind(kind Kind) []Issue {
	var out []Issue
	for _, issue := range a.Issues {
		if issue.Kind == kind {
			out = append(out, issue)
		}
	}
	return out
}

// HasFindings reports whether any name broke a rule.
func (a *Analysis) HasFindings() bool {
	return len(a.Issues) > 0
}

// Recommendations returns the advice for each rule that fired.
func (a *Analysis) Recommendations() []string {
	var recs []string
	if len(a.ByKind(KindTooShort)) > 0 {
		recs = append(recs, RecommendTooShort)
	}
	if len(a.ByKind(KindCamelCase)) > 0 {
		recs = append(recs, RecommendCamelCase)
	}
	return recs
}

// Section renders the issue listing alone, as spliced into the combined
// report. It is empty when there are no issues.
func (a *Analysis) Section() *report.Document {
	var d report.Document
	if !a.HasFindings() {
		return &d
	}

	d.Heading(2, "Naming Convention Issues")

	var short, camel []string
	for _, issue := range a.ByKind(KindTooShort) {
		short = append(short, fmt.Sprintf("- `%s` in `%s` (line %d)", issue.Name, issue.File, issue.Line))
	}
	for _, issue := range a.ByKind(KindCamelCase) {
		camel = append(camel, fmt.Sprintf("- `%s` in `%s` (line %d): %s", issue.Name, issue.File, issue.Line, issue.Suggestion))
	}
	report.Section(&d, 3, "Single-Letter Names", "Function names should be descriptive:", short)
	report.Section(&d, 3, "CamelCase Instead of snake_case", "Python conventions prefer snake_case for functions:", camel)
	return &d
}

// Document renders the standalone markdown report.
func (a *Analysis) Document() *report.Document {
	var d report.Document
	report.Header(&d, Title, a.Root, a.FileCount, a.FunctionCount)
	if !a.HasFindings() {
		d.Line("No naming convention issues found.")
		return &d
	}
	d.Append(a.Section())
	return &d
}

// RenderMarkdown writes the markdown report.
func (a *Analysis) RenderMarkdown(w io.Writer) error {
	_, err := a.Document().WriteTo(w)
	return err
}

// RenderText writes the issues as a table.
func (a *Analysis) RenderText(w io.Writer, colored bool) error {
	rows := make([][]string, 0, len(a.Issues))
	for _, issue := range a.Issues {
		rows = append(rows, []string{
			string(issue.Kind),
			issue.Name,
			fmt.Sprintf("%s:%d", issue.File, issue.Line),
			issue.Suggestion,
		})
	}
	table := output.NewTable(
		fmt.Sprintf("%s: %s", Title, a.Root),
		[]string{"Rule", "Name", "Location", "Suggestion"},
		rows,
		[]string{report.Plural(a.FileCount, "file"), report.Plural(a.FunctionCount, "function"), report.Plural(len(a.Issues), "issue"), ""},
		nil,
	)
	return table.RenderText(w, colored)
}

// RenderData returns the analysis for structured output.
func (a *Analysis) RenderData() any {
	return a
}
