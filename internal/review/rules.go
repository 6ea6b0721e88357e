package review

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sevigo/code-reviewer/internal/core"
)

var severityEmoji = map[core.Severity]string{
	core.SeverityCritical:   "🔴",
	core.SeverityWarning:    "🟡",
	core.SeverityInfo:       "🔵",
	core.SeveritySuggestion: "🟢",
}

func compileRule(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

// ValidateRules reports every rule whose pattern does not compile.
func ValidateRules(rules []core.CustomRule) error {
	var errs []error
	for i, r := range rules {
		if r.Pattern == "" {
			continue
		}
		if _, err := compileRule(r.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("custom rule %d (%q): %w", i+1, r.Message, err))
		}
	}
	return errors.Join(errs...)
}

// ApplyRules matches each rule against diff, case-insensitively, and returns
// one finding per rule that matched at least once, in rule order. Rules with an
// empty or invalid pattern are skipped.
func ApplyRules(rules []core.CustomRule, diff string) []core.Finding {
	var findings []core.Finding
	for _, r := range rules {
		if r.Pattern == "" {
			continue
		}
		re, err := compileRule(r.Pattern)
		if err != nil {
			continue
		}
		n := len(re.FindAllStringIndex(diff, -1))
		if n == 0 {
			continue
		}
		findings = append(findings, core.Finding{
			Severity:        core.ParseSeverity(r.Severity),
			Message:         r.Message,
			OccurrenceCount: n,
		})
	}
	return findings
}

// FormatFinding renders f as "<emoji> **SEVERITY**: message (N occurrence(s))".
func FormatFinding(f core.Finding) string {
	emoji, ok := severityEmoji[f.Severity]
	if !ok {
		emoji = "ℹ️"
	}
	return fmt.Sprintf("%s **%s**: %s (%d occurrence(s))", emoji, strings.ToUpper(string(f.Severity)), f.Message, f.OccurrenceCount)
}

// MergeFindings appends findings to the list matching their severity. Info
// findings are reported with the suggestions. Existing entries are untouched.
func MergeFindings(record *core.ReviewRecord, findings []core.Finding) {
	for _, f := range findings {
		text := FormatFinding(f)
		switch f.Severity {
		case core.SeverityCritical:
			record.Critical = append(record.Critical, text)
		case core.SeverityWarning:
			record.Warnings = append(record.Warnings, text)
		default:
			record.Suggestions = append(record.Suggestions, text)
		}
	}
}
