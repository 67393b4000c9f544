// Package observability provides logging, metrics and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range wrap(content, boxWidth-4) {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSummaryInput outputs the snapshot a summary will be generated from.
func (p *Printer) PrintSummaryInput(in *types.SummaryInput) {
	if in == nil {
		return
	}

	var sb strings.Builder
	title := in.JobTitle
	if title == "" {
		title = "(none)"
	}
	sb.WriteString(fmt.Sprintf("Job Title: %s\n", title))

	if len(in.Skills) > 0 {
		names := make([]string, 0, len(in.Skills))
		for _, s := range in.Skills {
			names = append(names, s.Name)
		}
		sb.WriteString(fmt.Sprintf("Skills:    %s\n", truncate(strings.Join(names, ", "), 40)))
	}

	if len(in.Experiences) > 0 {
		sb.WriteString("\nExperience:\n")
		count := min(len(in.Experiences), maxItemsToShow)
		for i := 0; i < count; i++ {
			exp := in.Experiences[i]
			sb.WriteString(fmt.Sprintf("  • %s\n", truncate(fmt.Sprintf("%s at %s", exp.JobTitle, exp.Company), 50)))
		}
		if len(in.Experiences) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(in.Experiences)-maxItemsToShow))
		}
	}

	p.printBox("SUMMARY INPUT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPrompt outputs the prompt sent to the provider.
func (p *Printer) PrintPrompt(prompt string) {
	if prompt == "" {
		return
	}
	p.printBox("PROMPT", prompt)
}

// PrintSummary outputs the generated summary.
func (p *Printer) PrintSummary(summary string) {
	if summary == "" {
		return
	}
	p.printBox("GENERATED SUMMARY", summary)
}

// PrintFailure outputs a generation failure with its kind.
func (p *Printer) PrintFailure(kind, message string) {
	p.printBox("⚠ SUMMARY FAILED ("+strings.ToUpper(kind)+")", message)
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// wrap splits content on newlines and soft-wraps long lines at word boundaries.
func wrap(content string, width int) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if len([]rune(line)) <= width {
			out = append(out, line)
			continue
		}
		var cur strings.Builder
		for _, word := range strings.Fields(line) {
			if cur.Len() > 0 && len([]rune(cur.String()))+1+len([]rune(word)) > width {
				out = append(out, cur.String())
				cur.Reset()
			}
			if cur.Len() > 0 {
				cur.WriteString(" ")
			}
			if len([]rune(word)) > width {
				word = truncate(word, width)
			}
			cur.WriteString(word)
		}
		if cur.Len() > 0 {
			out = append(out, cur.String())
		}
	}
	return out
}
