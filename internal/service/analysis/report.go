package analysis

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/panbanda/pylens/pkg/analyzer/architecture"
	"github.com/panbanda/pylens/pkg/analyzer/complexity"
	"github.com/panbanda/pylens/pkg/analyzer/duplication"
	"github.com/panbanda/pylens/pkg/analyzer/naming"
	"github.com/panbanda/pylens/pkg/report"
)

// Title heads the combined report.
const Title = "Code Analysis"

// Combined report text.
const (
	RecommendComplexity = "Break down complex functions using Extract Method refactoring"
	CleanSummary        = "No major code quality issues found. The codebase looks clean!"
)

// Report is the combined result of the analyzers selected by a focus.
// Analyzers that did not run are nil.
type Report struct {
	Root         string                 `json:"root" toon:"root"`
	Focus        string                 `json:"focus" toon:"focus"`
	FileCount    int                    `json:"file_count" toon:"file_count"`
	Complexity   *complexity.Analysis   `json:"complexity,omitempty" toon:"complexity,omitempty"`
	Architecture *architecture.Analysis `json:"architecture,omitempty" toon:"architecture,omitempty"`
	Naming       *naming.Analysis       `json:"naming,omitempty" toon:"naming,omitempty"`
	Duplication  *duplication.Analysis  `json:"duplication,omitempty" toon:"duplication,omitempty"`
}

// Recommendations collects advice from every analyzer with findings, in run
// order. Identical advice from different analyzers is kept.
func (r *Report) Recommendations() []string {
	var recs []string
	if r.Complexity != nil {
		if high, _, _ := r.Complexity.Severity(); len(high) > 0 {
			recs = append(recs, RecommendComplexity)
		}
	}
	if r.Architecture != nil {
		recs = append(recs, r.Architecture.Recommendations()...)
	}
	if r.Naming != nil {
		recs = append(recs, r.Naming.Recommendations()...)
	}
	if r.Duplication != nil {
		recs = append(recs, r.Duplication.Recommendations()...)
	}
	return recs
}

// HasFindings reports whether any selected analyzer found something.
func (r *Report) HasFindings() bool {
	return (r.Complexity != nil && r.Complexity.HasFindings()) ||
		(r.Architecture != nil && r.Architecture.HasFindings()) ||
		(r.Naming != nil && r.Naming.HasFindings()) ||
		(r.Duplication != nil && r.Duplication.HasFindings())
}

// splice appends a sub-report under its own heading, minus its title and
// counts lines.
func splice(d *report.Document, heading string, sub *report.Document) {
	d.Heading(2, heading)
	d.Lines(report.StripHeader(sub.String())...)
	d.Blank()
}

// Document renders the combined markdown report.
func (r *Report) Document() *report.Document {
	var d report.Document
	report.Header(&d, Title, r.Root, r.FileCount, -1)

	if r.Complexity != nil && r.Complexity.HasFindings() {
		splice(&d, "Complexity Analysis", r.Complexity.Document())
	}
	if r.Architecture != nil && r.Architecture.HasFindings() {
		splice(&d, "Architecture Analysis", r.Architecture.Document())
	}
	if r.Naming != nil && r.Naming.HasFindings() {
		d.Append(r.Naming.Section())
	}
	if r.Duplication != nil && r.Duplication.HasFindings() {
		splice(&d, "Duplication Analysis", r.Duplication.Document())
	}

	d.Heading(2, "Summary")
	if !r.HasFindings() {
		d.Line(CleanSummary)
		return &d
	}
	d.Heading(3, "Recommendations")
	d.Numbered(r.Recommendations()...)
	return &d
}

// RenderMarkdown writes the combined markdown report.
func (r *Report) RenderMarkdown(w io.Writer) error {
	_, err := r.Document().WriteTo(w)
	return err
}

// RenderText writes each analyzer's text rendering followed by the summary.
func (r *Report) RenderText(w io.Writer, colored bool) error {
	if r.Complexity != nil {
		if err := r.Complexity.RenderText(w, colored); err != nil {
			return err
		}
	}
	if r.Architecture != nil {
		if err := r.Architecture.RenderText(w, colored); err != nil {
			return err
		}
	}
	if r.Naming != nil {
		if err := r.Naming.RenderText(w, colored); err != nil {
			return err
		}
	}
	if r.Duplication != nil {
		if err := r.Duplication.RenderText(w, colored); err != nil {
			return err
		}
	}

	if !r.HasFindings() {
		if colored {
			_, err := color.New(color.FgGreen).Fprintln(w, CleanSummary)
			return err
		}
		_, err := fmt.Fprintln(w, CleanSummary)
		return err
	}
	for i, rec := range r.Recommendations() {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, rec); err != nil {
			return err
		}
	}
	return nil
}

// RenderData returns the report for structured output.
func (r *Report) RenderData() any {
	return r
}
