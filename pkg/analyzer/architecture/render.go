package architecture

import (
	"fmt"
	"io"
	"strings"

	"github.com/panbanda/pylens/internal/output"
	"github.com/panbanda/pylens/pkg/report"
)

// Title heads the standalone architecture report.
const Title = "Architecture Analysis"

// Orchestrator recommendations.
const (
	RecommendCycles     = "Break circular dependencies by introducing interfaces"
	RecommendViolations = "Apply dependency inversion to fix layer violations"
)

// HasFindings reports whether any cycle or layer violation was found.
func (a *Analysis) HasFindings() bool {
	return len(a.Cycles) > 0 || len(a.Violations) > 0
}

// Recommendations returns the advice for each kind of finding.
func (a *Analysis) Recommendations() []string {
	var recs []string
	if len(a.Cycles) > 0 {
		recs = append(recs, RecommendCycles)
	}
	if len(a.Violations) > 0 {
		recs = append(recs, RecommendViolations)
	}
	return recs
}

// Document renders the markdown report.
func (a *Analysis) Document() *report.Document {
	var d report.Document
	report.Header(&d, Title, a.Root, a.FileCount, -1)

	if len(a.Cycles) > 0 {
		items := make([]string, len(a.Cycles))
		for i, cycle := range a.Cycles {
			items[i] = "- " + strings.Join(cycle, " → ")
		}
		report.Section(&d, 2, "Circular Dependencies", "The following circular dependencies were detected:", items)
		d.Line("**Recommendation**: Break cycles by introducing interfaces or")
		d.Line("moving shared code to a separate module.")
		d.Blank()
	}

	if len(a.Violations) > 0 {
		items := make([]string, len(a.Violations))
		for i, v := range a.Violations {
			items[i] = fmt.Sprintf("- `%s` (%s) imports `%s` (%s)", v.Importer, LayerName(v.FromLayer), v.Imported, LayerName(v.ToLayer))
		}
		report.Section(&d, 2, "Layer Violations", "Inner layers should not depend on outer layers:", items)
		d.Line("**Recommendation**: Use dependency inversion - define interfaces")
		d.Line("in inner layers, implement in outer layers.")
		d.Blank()
	}

	d.Heading(2, "Dependency Graph")
	if len(a.Graph) == 0 {
		d.Line("No internal dependencies between modules.")
	}
	for _, dep := range a.Graph {
		quoted := make([]string, len(dep.DependsOn))
		for i, name := range dep.DependsOn {
			quoted[i] = "`" + name + "`"
		}
		d.Linef("- `%s` → %s", dep.Module, strings.Join(quoted, ", "))
	}
	d.Blank()

	if !a.HasFindings() {
		d.Heading(2, "Summary")
		d.Line("No circular dependencies or layer violations found.")
	}
	return &d
}

// RenderMarkdown writes the markdown report.
func (a *Analysis) RenderMarkdown(w io.Writer) error {
	_, err := a.Document().WriteTo(w)
	return err
}

// RenderText writes the graph as a table followed by any findings.
func (a *Analysis) RenderText(w io.Writer, colored bool) error {
	rows := make([][]string, 0, len(a.Graph))
	for _, dep := range a.Graph {
		rows = append(rows, []string{dep.Module, strings.Join(dep.DependsOn, ", ")})
	}
	table := output.NewTable(
		fmt.Sprintf("%s: %s", Title, a.Root),
		[]string{"Module", "Depends On"},
		rows,
		[]string{report.Plural(a.FileCount, "file"), report.Plural(len(a.Modules), "module")},
		nil,
	)
	if err := table.RenderText(w, colored); err != nil {
		return err
	}

	for _, cycle := range a.Cycles {
		line := "cycle: " + strings.Join(cycle, " -> ")
		if colored {
			line = output.SeverityColor("high", line)
		}
		fmt.Fprintln(w, line)
	}
	for _, v := range a.Violations {
		line := fmt.Sprintf("layer violation: %s (%s) imports %s (%s)", v.Importer, LayerName(v.FromLayer), v.Imported, LayerName(v.ToLayer))
		if colored {
			line = output.SeverityColor("medium", line)
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// RenderData returns the analysis for structured output.
func (a *Analysis) RenderData() any {
	return a
}
