// Package review runs the review pipeline: diff acquisition, model analysis,
// response parsing, custom rules and persistence.
package review

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sevigo/code-reviewer/internal/core"
)

// headingPattern matches an ATX heading. "#1234" or "#include" are not headings.
var headingPattern = regexp.MustCompile(`^#{1,6}\s`)

type section int

const (
	sectionNone section = iota
	sectionCritical
	sectionWarnings
	sectionSuggestions
	sectionPositive
	sectionSummary
)

// headingSection classifies a markdown heading by keyword, ignoring case and
// any emoji. Headings without a known keyword end the current section.
func headingSection(heading string) section {
	h := strings.ToLower(heading)
	switch {
	case strings.Contains(h, "critical"):
		return sectionCritical
	case strings.Contains(h, "warning"):
		return sectionWarnings
	case strings.Contains(h, "suggestion"):
		return sectionSuggestions
	case strings.Contains(h, "positive"):
		return sectionPositive
	case strings.Contains(h, "summary"):
		return sectionSummary
	default:
		return sectionNone
	}
}

// Parse decodes raw according to the response format the model was asked for.
func Parse(raw string, format core.ResponseFormat) *core.ReviewRecord {
	if format == core.ResponseJSON {
		return ParseJSON(raw)
	}
	return ParseMarkdown(raw)
}

// ParseMarkdown extracts the four finding lists and the summary from a
// markdown review. It never fails: unrecognized input yields empty lists.
//
// Items start with "-" or "*". A non-bullet line following an item continues
// it and is joined with a single space. Lines inside a ``` code block are
// always continuation text.
func ParseMarkdown(raw string) *core.ReviewRecord {
	record := core.NewReviewRecord()
	record.RawText = raw

	var (
		current section
		item    strings.Builder
		summary []string
		inFence bool
	)

	flush := func() {
		if item.Len() == 0 {
			return
		}
		text := item.String()
		item.Reset()
		switch current {
		case sectionCritical:
			record.Critical = append(record.Critical, text)
		case sectionWarnings:
			record.Warnings = append(record.Warnings, text)
		case sectionSuggestions:
			record.Suggestions = append(record.Suggestions, text)
		case sectionPositive:
			record.Positive = append(record.Positive, text)
		}
	}

	for _, line := range strings.Split(stripMarkdownFence(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fence := strings.HasPrefix(line, "```")
		code := inFence || fence
		if fence {
			inFence = !inFence
		}

		if !code {
			if isRule(line) {
				continue
			}
			if headingPattern.MatchString(line) {
				flush()
				current = headingSection(strings.TrimLeft(line, "# "))
				continue
			}
		}

		switch current {
		case sectionNone:
			continue
		case sectionSummary:
			summary = append(summary, line)
			continue
		}

		if code {
			if item.Len() > 0 {
				item.WriteString(" ")
				item.WriteString(line)
			}
			continue
		}
		if text, ok := bulletText(line); ok {
			flush()
			item.WriteString(text)
			continue
		}
		if item.Len() > 0 {
			item.WriteString(" ")
			item.WriteString(line)
		}
	}
	flush()

	record.Summary = strings.Join(summary, "\n")
	return record
}

func bulletText(line string) (string, bool) {
	if strings.HasPrefix(line, "**") {
		return "", false
	}
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
		return strings.TrimSpace(line[1:]), true
	}
	return "", false
}

// isRule reports whether line is a horizontal rule such as "---" or "***".
func isRule(line string) bool {
	if len(line) < 3 {
		return false
	}
	return strings.Trim(line, "-") == "" || strings.Trim(line, "*") == "" || strings.Trim(line, "_") == ""
}

// stripMarkdownFence removes ```markdown ... ``` wrapping that some LLMs add around their output.
func stripMarkdownFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "```markdown") || strings.HasPrefix(trimmed, "```md") {
		idx := strings.Index(trimmed, "\n")
		if idx < 0 {
			return s
		}
		inner := trimmed[idx+1:]
		if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
			inner = inner[:lastFence]
		}
		return strings.TrimSpace(inner)
	}
	return s
}

type jsonReview struct {
	Critical    []string `json:"critical"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
	Positive    []string `json:"positive"`
	Summary     string   `json:"summary"`
}

// ParseJSON decodes a JSON review, tolerating a surrounding code fence or
// prose. A response that cannot be decoded yields an empty record whose
// ParseError explains why; the raw text is kept either way.
func ParseJSON(raw string) *core.ReviewRecord {
	record := core.NewReviewRecord()
	record.RawText = raw

	var decoded jsonReview
	if err := json.NewDecoder(strings.NewReader(extractJSON(raw))).Decode(&decoded); err != nil {
		record.ParseError = fmt.Errorf("%w: %w", core.ErrParseDegraded, err).Error()
		return record
	}

	record.Critical = nonNil(decoded.Critical)
	record.Warnings = nonNil(decoded.Warnings)
	record.Suggestions = nonNil(decoded.Suggestions)
	record.Positive = nonNil(decoded.Positive)
	record.Summary = strings.TrimSpace(decoded.Summary)
	return record
}

// extractJSON returns the text from the first "{" inside the first fenced
// block, or inside raw when there is no fence.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if start := strings.Index(raw, "```"); start != -1 {
		rest := raw[start+3:]
		if end := strings.Index(rest, "```"); end != -1 {
			inner := strings.TrimSpace(rest[:end])
			if strings.HasPrefix(strings.ToLower(inner), "json") {
				inner = strings.TrimSpace(inner[4:])
			}
			raw = inner
		}
	}
	if brace := strings.Index(raw, "{"); brace > 0 {
		raw = raw[brace:]
	}
	return raw
}

func nonNil(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
