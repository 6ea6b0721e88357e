package review

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/gitutil"
)

type language struct {
	name       string
	extensions []string
	rules      []core.CustomRule
}

// Added lines in a unified diff start with "+", so line-anchored checks match
// on that prefix.
var languages = []language{
	{
		name:       "python",
		extensions: []string{".py"},
		rules: []core.CustomRule{
			{Pattern: `eval\(`, Severity: "critical", Message: "Avoid eval() - security risk"},
			{Pattern: `exec\(`, Severity: "critical", Message: "Avoid exec() - security risk"},
			{Pattern: `pickle\.loads?\(`, Severity: "warning", Message: "Pickle can execute arbitrary code"},
			{Pattern: `(?m)^\+\s*print\(`, Severity: "info", Message: "Debug print statement"},
		},
	},
	{
		name:       "javascript",
		extensions: []string{".js", ".jsx", ".ts", ".tsx"},
		rules: []core.CustomRule{
			{Pattern: `eval\(`, Severity: "critical", Message: "Avoid eval() - security risk"},
			{Pattern: `innerHTML\s*=`, Severity: "critical", Message: "XSS risk - use textContent or sanitize"},
			{Pattern: `console\.log\(`, Severity: "info", Message: "Remove debug console.log"},
			{Pattern: `[^=!]==\s`, Severity: "warning", Message: "Use === for strict equality"},
		},
	},
	{
		name:       "java",
		extensions: []string{".java"},
		rules: []core.CustomRule{
			{Pattern: `Runtime\.getRuntime\(\)\.exec`, Severity: "critical", Message: "Command injection risk"},
			{Pattern: `System\.out\.print`, Severity: "info", Message: "Use logging instead of System.out"},
			{Pattern: `catch\s*\(\s*Exception\s+\w+\s*\)\s*\{\s*\}`, Severity: "warning", Message: "Empty catch block"},
		},
	},
	{
		name:       "go",
		extensions: []string{".go"},
		rules: []core.CustomRule{
			{Pattern: `panic\(`, Severity: "warning", Message: "Consider returning error instead of panic"},
			{Pattern: `//\s*TODO`, Severity: "info", Message: "TODO comment found"},
			{Pattern: `fmt\.Print`, Severity: "info", Message: "Consider using structured logging"},
		},
	},
	{
		name:       "rust",
		extensions: []string{".rs"},
		rules: []core.CustomRule{
			{Pattern: `unwrap\(\)`, Severity: "warning", Message: "Avoid unwrap() - handle errors explicitly"},
			{Pattern: `expect\(`, Severity: "info", Message: "Consider proper error handling"},
			{Pattern: `unsafe\s*\{`, Severity: "warning", Message: "Unsafe block requires careful review"},
		},
	},
}

// DetectLanguage maps a file path to a language name by extension, or "unknown".
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for _, l := range languages {
		if slices.Contains(l.extensions, ext) {
			return l.name
		}
	}
	return "unknown"
}

// LanguageRules returns the built-in checks for a language, or nil.
func LanguageRules(name string) []core.CustomRule {
	name = strings.ToLower(name)
	for _, l := range languages {
		if l.name == name {
			return slices.Clone(l.rules)
		}
	}
	return nil
}

// RuleFindings applies the configured custom rules to diff followed, when
// enabled, by the built-in rules of each language found in it. Each
// language's rules are matched against that language's files only.
func RuleFindings(cfg core.ReviewConfig, diff string) []core.Finding {
	return applyScoped(rulesForDiff(cfg, diff), diff)
}

func rulesForDiff(cfg core.ReviewConfig, diff string) []scopedRule {
	var out []scopedRule
	for _, r := range cfg.CustomRules() {
		out = append(out, scopedRule{rule: r})
	}
	if !cfg.LanguageRules {
		return out
	}

	byLang := map[string][]string{}
	var order []string
	for _, f := range gitutil.SplitDiff(diff) {
		lang := DetectLanguage(f.Path)
		if lang == "unknown" {
			continue
		}
		if _, seen := byLang[lang]; !seen {
			order = append(order, lang)
		}
		byLang[lang] = append(byLang[lang], f.Text)
	}
	for _, lang := range order {
		scope := strings.Join(byLang[lang], "")
		for _, r := range LanguageRules(lang) {
			out = append(out, scopedRule{rule: r, scope: scope, scoped: true})
		}
	}
	return out
}

// scopedRule is a rule together with the part of the diff it applies to.
type scopedRule struct {
	rule   core.CustomRule
	scope  string
	scoped bool
}

func applyScoped(rules []scopedRule, diff string) []core.Finding {
	var findings []core.Finding
	for _, r := range rules {
		text := diff
		if r.scoped {
			text = r.scope
		}
		findings = append(findings, ApplyRules([]core.CustomRule{r.rule}, text)...)
	}
	return findings
}
