package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-reviewer/internal/core"
)

func TestApplyRules(t *testing.T) {
	diff := "+ print('a')\n+ PRINT('b')\n+ print('c')\n+ x = 1"
	rules := []core.CustomRule{
		{Pattern: `print\(`, Message: "Debug statement", Severity: "warning"},
		{Pattern: `password`, Message: "Secret", Severity: "critical"},
		{Pattern: "", Message: "Empty", Severity: "critical"},
		{Pattern: `x =`, Message: "Assignment", Severity: "bogus"},
	}

	findings := ApplyRules(rules, diff)
	require.Len(t, findings, 2)

	assert.Equal(t, core.Finding{Severity: core.SeverityWarning, Message: "Debug statement", OccurrenceCount: 3}, findings[0])
	assert.Equal(t, core.Finding{Severity: core.SeverityInfo, Message: "Assignment", OccurrenceCount: 1}, findings[1])
}

func TestApplyRules_InvalidPatternSkipped(t *testing.T) {
	findings := ApplyRules([]core.CustomRule{{Pattern: `(`, Message: "broken"}}, "(")
	assert.Empty(t, findings)
	assert.Error(t, ValidateRules([]core.CustomRule{{Pattern: `(`, Message: "broken"}}))
	assert.NoError(t, ValidateRules([]core.CustomRule{{Pattern: `ok`}, {Pattern: ""}}))
}

func TestFormatFinding(t *testing.T) {
	tests := []struct {
		f    core.Finding
		want string
	}{
		{core.Finding{Severity: core.SeverityCritical, Message: "m", OccurrenceCount: 1}, "🔴 **CRITICAL**: m (1 occurrence(s))"},
		{core.Finding{Severity: core.SeverityWarning, Message: "m", OccurrenceCount: 2}, "🟡 **WARNING**: m (2 occurrence(s))"},
		{core.Finding{Severity: core.SeverityInfo, Message: "m", OccurrenceCount: 3}, "🔵 **INFO**: m (3 occurrence(s))"},
		{core.Finding{Severity: core.SeveritySuggestion, Message: "m", OccurrenceCount: 4}, "🟢 **SUGGESTION**: m (4 occurrence(s))"},
		{core.Finding{Severity: "other", Message: "m", OccurrenceCount: 5}, "ℹ️ **OTHER**: m (5 occurrence(s))"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFinding(tt.f))
	}
}

func TestMergeFindings(t *testing.T) {
	r := core.NewReviewRecord()
	r.Warnings = append(r.Warnings, "from the model")

	MergeFindings(r, []core.Finding{
		{Severity: core.SeverityCritical, Message: "c", OccurrenceCount: 1},
		{Severity: core.SeverityWarning, Message: "w", OccurrenceCount: 1},
		{Severity: core.SeveritySuggestion, Message: "s", OccurrenceCount: 1},
		{Severity: core.SeverityInfo, Message: "i", OccurrenceCount: 1},
	})

	assert.Len(t, r.Critical, 1)
	assert.Equal(t, "from the model", r.Warnings[0])
	assert.Len(t, r.Warnings, 2)
	assert.Len(t, r.Suggestions, 2)
	assert.Empty(t, r.Positive)
}
