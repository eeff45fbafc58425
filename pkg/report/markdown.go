// Package report builds the markdown documents every analyzer returns.
package report

import (
	"fmt"
	"io"
	"strings"
)

// Document accumulates markdown lines. The zero value is ready to use.
type Document struct {
	lines []string
}

// Line appends one line verbatim.
func (d *Document) Line(s string) {
	d.lines = append(d.lines, s)
}

// Linef appends one formatted line.
func (d *Document) Linef(format string, args ...any) {
	d.lines = append(d.lines, fmt.Sprintf(format, args...))
}

// Lines appends several lines verbatim.
func (d *Document) Lines(lines ...string) {
	d.lines = append(d.lines, lines...)
}

// Blank appends an empty line.
func (d *Document) Blank() {
	d.lines = append(d.lines, "")
}

// Heading appends a heading of the given level followed by a blank line.
func (d *Document) Heading(level int, text string) {
	d.lines = append(d.lines, strings.Repeat("#", level)+" "+text, "")
}

// Bullets appends each item as a "- " list entry.
func (d *Document) Bullets(items ...string) {
	for _, item := range items {
		d.lines = append(d.lines, "- "+item)
	}
}

// Numbered appends items as a 1-based numbered list.
func (d *Document) Numbered(items ...string) {
	for i, item := range items {
		d.lines = append(d.lines, fmt.Sprintf("%d. %s", i+1, item))
	}
}

// Append copies another document's lines onto this one.
func (d *Document) Append(other *Document) {
	d.lines = append(d.lines, other.lines...)
}

// Len returns the number of lines.
func (d *Document) Len() int {
	return len(d.lines)
}

// String joins the lines with newlines, without a trailing newline.
func (d *Document) String() string {
	return strings.Join(d.lines, "\n")
}

// WriteTo writes the document followed by a final newline.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.String()+"\n")
	return int64(n), err
}

// Plural formats a count with its noun, adding "s" unless n is 1.
func Plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// Header starts a report: "# <title>: <path>", a blank line, and a stats line
// when fileCount is non-negative. funcCount < 0 omits the function count.
func Header(d *Document, title, path string, fileCount, funcCount int) {
	d.Linef("# %s: %s", title, path)
	d.Blank()
	if fileCount < 0 {
		return
	}
	stats := "Analyzed " + Plural(fileCount, "file")
	if funcCount >= 0 {
		stats += ", found " + Plural(funcCount, "function")
	}
	d.Line(stats + ".")
	d.Blank()
}

// Section appends a heading, optional description and items, then a blank
// line. Nothing is written when items is empty.
func Section(d *Document, level int, heading, description string, items []string) {
	if len(items) == 0 {
		return
	}
	d.Heading(level, heading)
	if description != "" {
		d.Line(description)
		d.Blank()
	}
	d.Lines(items...)
	d.Blank()
}

// StripHeader drops a sub-report's title and count lines so it can be spliced
// into a combined document.
func StripHeader(markdown string) []string {
	var kept []string
	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(line, "# ") || strings.HasPrefix(line, "Analyzed ") {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}
