// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/candidate-tracker/internal/bulk"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for CLI commands
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
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads line to the box's inner width, counting runes.
func pad(line string) string {
	width := boxWidth - 4
	n := utf8.RuneCountInString(line)
	if n > width {
		runes := []rune(line)
		return string(runes[:width-3]) + "..."
	}
	return line + strings.Repeat(" ", width-n)
}

// PrintOutcome outputs the result of a screening or a decision.
func (p *Printer) PrintOutcome(out *lifecycle.Outcome) {
	if out == nil || out.Candidate == nil {
		return
	}
	c := out.Candidate

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:        %s\n", c.ID))
	sb.WriteString(fmt.Sprintf("Name:      %s <%s>\n", c.Name, c.Email))
	sb.WriteString(fmt.Sprintf("Role:      %s\n", c.Role))
	sb.WriteString(fmt.Sprintf("Fit:       %d%% (%s)\n", c.FitScore, c.FitCategory))
	sb.WriteString(fmt.Sprintf("Status:    %s\n", c.Status))
	if c.RecommendedAction != "" {
		sb.WriteString(fmt.Sprintf("Recommend: %s\n", c.RecommendedAction))
	}
	if c.IsDuplicate {
		sb.WriteString(fmt.Sprintf("Duplicate: %s\n", c.DuplicateInfo))
	}

	writeList(&sb, "Strengths", c.Strengths)
	writeList(&sb, "Gaps", c.Gaps)

	switch {
	case out.Warning != "":
		sb.WriteString(fmt.Sprintf("\n⚠ %s\n", out.Warning))
	case out.Notification != nil && out.Notification.Success:
		sb.WriteString("\n✅ notification sent\n")
	}

	p.printBox("CANDIDATE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintActionItems outputs the queue of candidates awaiting a decision.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintActionItems(items []types.ActionItem) {
	if len(items) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %s │\n", pad("✅ NOTHING AWAITING REVIEW"))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d candidates awaiting a decision:\n\n", len(items)))
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("[%s] %s - %s\n", strings.ToUpper(string(item.Priority)), item.CandidateName, item.Role))
		sb.WriteString(fmt.Sprintf("  %s\n", item.Message))
		sb.WriteString(fmt.Sprintf("  %s\n", item.CandidateID))
		if i < len(items)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("ACTION ITEMS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBulkResult outputs per-item results of a bulk run.
func (p *Printer) PrintBulkResult(action bulk.Action, res *bulk.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Succeeded: %d\n", res.SuccessCount))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", res.FailureCount))

	var failures []bulk.ItemResult
	for _, it := range res.Items {
		if !it.Success {
			failures = append(failures, it)
		}
	}
	if len(failures) > 0 {
		sb.WriteString("\nFailures:\n")
		count := min(len(failures), maxItemsToShow)
		for _, it := range failures[:count] {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", it.CandidateID))
			sb.WriteString(fmt.Sprintf("    %s\n", it.Error))
		}
		if len(failures) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(failures)-maxItemsToShow))
		}
	}

	p.printBox("BULK "+strings.ToUpper(string(action)), strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n%s:\n", label))
	count := min(len(items), maxItemsToShow)
	for _, s := range items[:count] {
		sb.WriteString(fmt.Sprintf("  • %s\n", s))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}
