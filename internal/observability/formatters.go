// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rmarques/newsstory/internal/curation"
	"github.com/rmarques/newsstory/internal/pipeline"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
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

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCandidates outputs the curated candidates with scores and sources.
func (p *Printer) PrintCandidates(candidates []curation.Candidate) {
	if len(candidates) == 0 {
		p.printBox("CURATED CANDIDATES", "No candidates matched.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total candidates: %d\n\n", len(candidates)))

	count := min(len(candidates), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := candidates[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, c.Title))
		sb.WriteString(fmt.Sprintf("    Score: %d  Source: %s\n", c.KeywordScore, c.Source))
		if c.Published != nil {
			sb.WriteString(fmt.Sprintf("    Published: %s\n", c.Published.Format("2006-01-02 15:04 MST")))
		}
	}
	if len(candidates) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(candidates)-maxItemsToShow))
	}

	p.printBox("CURATED CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReport outputs a human-readable summary of a pipeline run.
func (p *Printer) PrintReport(report *pipeline.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:       %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Succeeded: %d of %d\n", report.Succeeded, report.Requested))
	if !report.FinishedAt.IsZero() && !report.StartedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Duration:  %s\n", report.FinishedAt.Sub(report.StartedAt).Round(10*time.Millisecond)))
	}
	sb.WriteString("\n")

	for i, o := range report.Outcomes {
		if o.Succeeded() {
			sb.WriteString(fmt.Sprintf("#%d  ok      %s\n", i+1, o.OutputPath))
		} else {
			sb.WriteString(fmt.Sprintf("#%d  failed  %v\n", i+1, o.Err))
		}
	}

	p.printBox("PIPELINE REPORT", strings.TrimSuffix(sb.String(), "\n"))
}
