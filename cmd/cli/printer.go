package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/review"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	dimColor     = color.New(color.FgHiBlack)
)

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("51")).
			Padding(0, 2)
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			BorderTop(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

func printStart(w io.Writer, kind string) {
	titleColor.Fprintf(w, "Starting code review of %s changes...\n", kind)
}

func printTerminal(w io.Writer, outcome *review.Outcome) error {
	if outcome.Status != review.StatusCompleted {
		warnColor.Fprintln(w, outcome.Message)
		return nil
	}
	record := outcome.Record

	fmt.Fprintln(w, bannerStyle.Render(fmt.Sprintf("📋 Code Review: %s", record.DiffKind)))
	fmt.Fprintln(w)
	fmt.Fprint(w, review.RenderTerminal(record))

	if record.Summary != "" {
		titleColor.Fprintln(w, "🔍 Summary")
		fmt.Fprintln(w, renderMarkdown(record.Summary))
	}
	if record.IssueCount() == 0 && record.ParseError == "" {
		successColor.Fprintln(w, "✅ No issues found!")
	}

	fmt.Fprintln(w, footerStyle.Render(footer(record)))
	return nil
}

func footer(r *core.ReviewRecord) string {
	parts := []string{
		"Model: " + r.Model,
		fmt.Sprintf("Files: %d", r.FileCount),
		fmt.Sprintf("Duration: %.2fs", r.DurationSeconds),
	}
	if r.Cached {
		parts = append(parts, "cached")
	}
	if r.ID != "" {
		parts = append(parts, "ID: "+r.ID)
	}
	return strings.Join(parts, " · ")
}

// renderMarkdown renders md for the terminal, falling back to the raw text.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
