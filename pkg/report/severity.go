package report

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// Severity band thresholds shared by every score-based report.
const (
	HighThreshold   = 10
	MediumThreshold = 5
)

// Severity is a score band.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// String implements fmt.Stringer for TOON serialization.
func (s Severity) String() string {
	return string(s)
}

// SeverityFor maps a score onto its band: high >= 10, medium 5-9, low < 5.
func SeverityFor(score int) Severity {
	switch {
	case score >= HighThreshold:
		return SeverityHigh
	case score >= MediumThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// GroupBySeverity splits items into bands, keeping their relative order.
func GroupBySeverity[T any](items []T, score func(T) int) (high, medium, low []T) {
	for _, item := range items {
		switch SeverityFor(score(item)) {
		case SeverityHigh:
			high = append(high, item)
		case SeverityMedium:
			medium = append(medium, item)
		default:
			low = append(low, item)
		}
	}
	return high, medium, low
}

// FindingID derives a short stable identifier from the parts that locate a
// finding, so structured output can be diffed across runs.
func FindingID(parts ...string) string {
	sum := blake3.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:6])
}
