package core

import (
	"regexp"
	"slices"
	"strings"
)

const (
	DefaultModelName   = "gemini-2.5-flash"
	DefaultTemperature = 0.3
	// DefaultMaxDiffFiles matches the max_diff_size default of .codereview.yaml.
	DefaultMaxDiffFiles = 100
)

// ReviewConfig is the per-run snapshot of .codereview.yaml.
// It is passed by value and its accessors return copies, so a run cannot
// observe changes made by another.
type ReviewConfig struct {
	ModelName     string
	Temperature   float64
	LanguageRules bool
	// MaxDiffFiles caps the number of files sent to the model. Zero disables the cap.
	MaxDiffFiles int

	customRules     []CustomRule
	ignorePatterns  []string
	includePatterns []string
}

// NewReviewConfig builds a snapshot, copying the given slices.
func NewReviewConfig(model string, temperature float64, rules []CustomRule, ignore, include []string) ReviewConfig {
	if model == "" {
		model = DefaultModelName
	}
	return ReviewConfig{
		ModelName:       model,
		Temperature:     temperature,
		MaxDiffFiles:    DefaultMaxDiffFiles,
		customRules:     slices.Clone(rules),
		ignorePatterns:  slices.Clone(ignore),
		includePatterns: slices.Clone(include),
	}
}

// DefaultReviewConfig returns the configuration used when no file is present.
func DefaultReviewConfig() ReviewConfig {
	return NewReviewConfig(DefaultModelName, DefaultTemperature, nil, nil, nil)
}

func (c ReviewConfig) CustomRules() []CustomRule {
	return slices.Clone(c.customRules)
}

func (c ReviewConfig) IgnorePatterns() []string {
	return slices.Clone(c.ignorePatterns)
}

func (c ReviewConfig) IncludePatterns() []string {
	return slices.Clone(c.includePatterns)
}

// ShouldReviewFile reports whether path survives the ignore and include patterns.
// Patterns are simple globs: "**/" matches any directory prefix, "*" any run of
// characters except "/", and "?" a single character. A pattern may match anywhere
// in the path.
func (c ReviewConfig) ShouldReviewFile(path string) bool {
	for _, p := range c.ignorePatterns {
		if globMatch(p, path) {
			return false
		}
	}
	if len(c.includePatterns) == 0 {
		return true
	}
	for _, p := range c.includePatterns {
		if globMatch(p, path) {
			return true
		}
	}
	return false
}

func globMatch(pattern, path string) bool {
	re, err := regexp.Compile(globToRegex(pattern))
	if err != nil {
		return false
	}
	return re.MatchString(path)
}

func globToRegex(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		switch {
		case strings.HasPrefix(pattern[i:], "**/"):
			b.WriteString(".*")
			i += 2
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(".*")
			i++
		case pattern[i] == '*':
			b.WriteString("[^/]*")
		case pattern[i] == '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(pattern[i])))
		}
	}
	return b.String()
}
