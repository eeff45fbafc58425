package complexity

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/panbanda/pylens/internal/output"
	"github.com/panbanda/pylens/pkg/report"
)

// Title heads the standalone complexity report.
const Title = "Complexity Analysis"

// Severity groups the reported functions into high, medium and low bands.
func (a *Analysis) Severity() (high, medium, low []FunctionResult) {
	return report.GroupBySeverity(a.Functions, func(f FunctionResult) int { return f.Score })
}

// HasFindings reports whether any function reached the medium or high band.
func (a *Analysis) HasFindings() bool {
	high, medium, _ := a.Severity()
	return len(high) > 0 || len(medium) > 0
}

// Document renders the markdown report.
func (a *Analysis) Document() *report.Document {
	var d report.Document
	report.Header(&d, Title, a.Root, a.FileCount, a.FunctionCount)

	if len(a.Functions) == 0 {
		if a.Threshold > DefaultThreshold {
			d.Linef("No functions found with complexity score ≥ %d.", a.Threshold)
			d.Line("All functions are below threshold.")
		} else {
			d.Line("No complexity issues found.")
		}
		return &d
	}

	high, medium, low := a.Severity()

	if len(high) > 0 {
		d.Heading(2, "High Complexity (score ≥ 10)")
		d.Line("These functions should be refactored as a priority:")
		d.Blank()
		for _, fn := range high {
			d.Linef("### `%s` in `%s` (line %d)", fn.Name, fn.File, fn.Line)
			d.Linef("**Score: %d**", fn.Score)
			d.Blank()
			if len(fn.Issues) > 0 {
				d.Line("Issues:")
				d.Bullets(fn.Issues...)
			}
			d.Blank()
		}
	}

	mediumItems := make([]string, len(medium))
	for i, fn := range medium {
		issues := "moderate complexity"
		if len(fn.Issues) > 0 {
			issues = strings.Join(fn.Issues, ", ")
		}
		mediumItems[i] = fmt.Sprintf("- `%s` in `%s` (line %d): %s", fn.Name, fn.File, fn.Line, issues)
	}
	report.Section(&d, 2, "Medium Complexity (score 5-9)", "", mediumItems)

	if a.Threshold < report.MediumThreshold {
		lowItems := make([]string, len(low))
		for i, fn := range low {
			lowItems[i] = fmt.Sprintf("- `%s` in `%s` (line %d): score %d", fn.Name, fn.File, fn.Line, fn.Score)
		}
		report.Section(&d, 2, "Low Complexity (score < 5)", "", lowItems)
	}

	d.Heading(2, "Recommendations")
	d.Bullets(a.Recommendations()...)
	return &d
}

// Recommendations lists the refactoring advice that applies to the
// reported functions.
func (a *Analysis) Recommendations() []string {
	var recs []string
	high, _, _ := a.Severity()
	if len(high) > 0 {
		recs = append(recs,
			"**High priority**: Break down complex functions using Extract Method",
			"Consider replacing conditionals with polymorphism or strategy pattern")
	}
	if a.any(func(m Metrics) bool { return m.Params > TargetParams }) {
		recs = append(recs, "Use parameter objects or builder pattern for many parameters")
	}
	if a.any(func(m Metrics) bool { return m.MaxDepth > TargetDepth }) {
		recs = append(recs, "Reduce nesting with early returns (guard clauses)")
	}
	if a.any(func(m Metrics) bool { return m.Lines > 30 }) {
		recs = append(recs, "Extract helper functions to reduce function length")
	}
	return recs
}

func (a *Analysis) any(pred func(Metrics) bool) bool {
	for _, fn := range a.Functions {
		if pred(fn.Metrics) {
			return true
		}
	}
	return false
}

// RenderMarkdown writes the markdown report.
func (a *Analysis) RenderMarkdown(w io.Writer) error {
	_, err := a.Document().WriteTo(w)
	return err
}

// RenderText writes the reported functions as a table.
func (a *Analysis) RenderText(w io.Writer, colored bool) error {
	rows := make([][]string, 0, len(a.Functions))
	for _, fn := range a.Functions {
		severity := string(fn.Severity)
		if colored {
			severity = output.SeverityColor(severity, severity)
		}
		rows = append(rows, []string{
			fn.QualifiedName,
			fmt.Sprintf("%s:%d", fn.File, fn.Line),
			strconv.Itoa(fn.Score),
			severity,
			strings.Join(fn.Issues, "; "),
		})
	}
	table := output.NewTable(
		fmt.Sprintf("%s: %s", Title, a.Root),
		[]string{"Function", "Location", "Score", "Severity", "Issues"},
		rows,
		[]string{
			report.Plural(a.FileCount, "file"),
			report.Plural(a.FunctionCount, "function"),
			fmt.Sprintf("%d reported", len(a.Functions)),
			"",
			"",
		},
		nil,
	)
	return table.RenderText(w, colored)
}

// RenderData returns the analysis for structured output.
func (a *Analysis) RenderData() any {
	return a
}
