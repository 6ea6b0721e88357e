package review

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/sevigo/code-reviewer/internal/core"
)

type reportSection struct {
	title string
	items []string
	color *color.Color
}

func sections(r *core.ReviewRecord) []reportSection {
	return []reportSection{
		{"🔴 Critical Issues", r.Critical, color.New(color.FgRed, color.Bold)},
		{"🟡 Warnings", r.Warnings, color.New(color.FgYellow, color.Bold)},
		{"🟢 Suggestions", r.Suggestions, color.New(color.FgGreen, color.Bold)},
		{"✅ Positive Notes", r.Positive, color.New(color.FgCyan, color.Bold)},
	}
}

// Render formats an outcome. Terminal output is colored when stdout is a TTY.
func Render(o *Outcome, format core.OutputFormat) ([]byte, error) {
	switch format {
	case core.OutputJSON:
		return RenderJSON(o)
	case core.OutputMarkdown:
		if o.Status != StatusCompleted {
			return []byte(o.Message + "\n"), nil
		}
		return []byte(RenderMarkdown(o.Record)), nil
	default:
		if o.Status != StatusCompleted {
			return []byte(o.Message + "\n"), nil
		}
		return []byte(RenderTerminal(o.Record)), nil
	}
}

// RenderMarkdown writes the record as a markdown document.
func RenderMarkdown(r *core.ReviewRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Code Review: %s changes\n\n", r.DiffKind)
	if r.Model != "" {
		fmt.Fprintf(&b, "_Model: %s · Files: %d · Duration: %.2fs_\n\n", r.Model, r.FileCount, r.DurationSeconds)
	}
	for _, s := range sections(r) {
		fmt.Fprintf(&b, "## %s\n\n", s.title)
		if len(s.items) == 0 {
			b.WriteString("_None_\n\n")
			continue
		}
		for _, item := range s.items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}
	if r.Summary != "" {
		fmt.Fprintf(&b, "## 🔍 Summary\n\n%s\n", r.Summary)
	}
	if r.ParseError != "" {
		fmt.Fprintf(&b, "\n> %s\n\n```\n%s\n```\n", r.ParseError, r.RawText)
	}
	return b.String()
}

// RenderTerminal writes the record as colored plain text. The summary is
// left to the caller so it can be rendered as markdown.
func RenderTerminal(r *core.ReviewRecord) string {
	var b strings.Builder
	for _, s := range sections(r) {
		b.WriteString(s.color.Sprintf("%s (%d)", s.title, len(s.items)))
		b.WriteString("\n")
		for _, item := range s.items {
			fmt.Fprintf(&b, "  • %s\n", item)
		}
		b.WriteString("\n")
	}
	if r.ParseError != "" {
		b.WriteString(color.New(color.FgRed).Sprint(r.ParseError))
		b.WriteString("\n\n")
		b.WriteString(r.RawText)
		b.WriteString("\n")
	}
	return b.String()
}

type jsonOutput struct {
	DiffType string             `json:"diff_type"`
	Status   Status             `json:"status"`
	Message  string             `json:"message,omitempty"`
	Review   *core.ReviewRecord `json:"review,omitempty"`
}

// RenderJSON writes {"diff_type", "status", "message", "review"}, indented.
func RenderJSON(o *Outcome) ([]byte, error) {
	out, err := json.MarshalIndent(jsonOutput{
		DiffType: o.Kind,
		Status:   o.Status,
		Message:  o.Message,
		Review:   o.Record,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode review: %w", err)
	}
	return append(out, '\n'), nil
}
