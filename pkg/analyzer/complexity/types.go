package complexity

import (
	"fmt"

	"github.com/panbanda/pylens/internal/fileproc"
	"github.com/panbanda/pylens/pkg/report"
)

// Targets above which a metric is reported as an issue.
const (
	TargetCyclomatic = 5
	TargetLines      = 20
	TargetDepth      = 3
	TargetParams     = 4
)

// Metrics are the raw measurements for one function.
type Metrics struct {
	Cyclomatic int `json:"cyclomatic" toon:"cyclomatic"`
	Lines      int `json:"lines" toon:"lines"`
	MaxDepth   int `json:"max_depth" toon:"max_depth"`
	Params     int `json:"params" toon:"params"`
}

// Score combines the metrics: cyclomatic complexity plus penalties for
// length over 20 lines, nesting over 3 and parameters over 4.
func (m Metrics) Score() int {
	score := m.Cyclomatic
	if m.Lines > TargetLines {
		score += (m.Lines - TargetLines) / 10
	}
	if m.MaxDepth > TargetDepth {
		score += (m.MaxDepth - TargetDepth) * 2
	}
	if m.Params > TargetParams {
		score += (m.Params - TargetParams) * 2
	}
	return score
}

// Issues describes every metric that exceeds its target.
func (m Metrics) Issues() []string {
	var issues []string
	if m.Cyclomatic > TargetCyclomatic {
		issues = append(issues, fmt.Sprintf("cyclomatic complexity %d (target: ≤%d)", m.Cyclomatic, TargetCyclomatic))
	}
	if m.Lines > TargetLines {
		issues = append(issues, fmt.Sprintf("%d lines (target: ≤%d)", m.Lines, TargetLines))
	}
	if m.MaxDepth > TargetDepth {
		issues = append(issues, fmt.Sprintf("nesting depth %d (target: ≤%d)", m.MaxDepth, TargetDepth))
	}
	if m.Params > TargetParams {
		issues = append(issues, fmt.Sprintf("%d parameters (target: ≤%d)", m.Params, TargetParams))
	}
	return issues
}

// FunctionResult is one measured function.
type FunctionResult struct {
	ID            string          `json:"id" toon:"id"`
	Name          string          `json:"name" toon:"name"`
	QualifiedName string          `json:"qualified_name" toon:"qualified_name"`
	File          string          `json:"file" toon:"file"`
	Line          int             `json:"line" toon:"line"`
	Async         bool            `json:"async" toon:"async"`
	Metrics       Metrics         `json:"metrics" toon:"metrics"`
	Score         int             `json:"score" toon:"score"`
	Severity      report.Severity `json:"severity" toon:"severity"`
	Issues        []string        `json:"issues,omitempty" toon:"issues,omitempty"`
}

// Analysis is the result of a complexity run over a file set.
type Analysis struct {
	Root          string `json:"root" toon:"root"`
	Threshold     int    `json:"threshold" toon:"threshold"`
	FileCount     int    `json:"file_count" toon:"file_count"`
	FunctionCount int    `json:"function_count" toon:"function_count"`
	// Functions are those scoring at least Threshold, highest score first.
	Functions []FunctionResult `json:"functions" toon:"functions"`
	Skipped   []string         `json:"skipped,omitempty" toon:"skipped,omitempty"`
	// Failures holds the error behind each skipped file.
	Failures []fileproc.ProcessingError `json:"-" toon:"-"`
}
