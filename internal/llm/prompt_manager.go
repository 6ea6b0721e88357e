package llm

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"

	"github.com/sevigo/code-reviewer/internal/core"
)

//go:embed prompts/*.prompt
var promptFiles embed.FS

// ModelProvider names a prompt variant. Files are named <key>_<provider>.prompt,
// and "default" is used for any provider without its own file.
type ModelProvider string

// PromptKey names a review task.
type PromptKey string

const (
	DefaultProvider      ModelProvider = "default"
	CodeReviewPrompt     PromptKey     = "code_review"
	CodeReviewJSONPrompt PromptKey     = "code_review_json"
)

// PromptKeyFor selects the review prompt for a response format.
func PromptKeyFor(format core.ResponseFormat) PromptKey {
	if format == core.ResponseJSON {
		return CodeReviewJSONPrompt
	}
	return CodeReviewPrompt
}

// ReviewPromptData is the template input of the review prompts.
type ReviewPromptData struct {
	Diff     string
	Language string
}

type promptID struct {
	key      PromptKey
	provider ModelProvider
}

// PromptManager renders the embedded review prompts.
type PromptManager struct {
	templates map[promptID]*template.Template
}

func NewPromptManager() (*PromptManager, error) {
	return loadPrompts(promptFiles, "prompts")
}

func loadPrompts(fsys fs.FS, dir string) (*PromptManager, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}

	pm := &PromptManager{templates: make(map[promptID]*template.Template, len(entries))}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".prompt" {
			continue
		}
		id, err := parsePromptName(e.Name())
		if err != nil {
			return nil, err
		}
		body, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt %s: %w", e.Name(), err)
		}
		tmpl, err := template.New(e.Name()).Option("missingkey=error").Parse(string(body))
		if err != nil {
			return nil, fmt.Errorf("failed to parse prompt %s: %w", e.Name(), err)
		}
		pm.templates[id] = tmpl
	}
	return pm, nil
}

// parsePromptName splits "code_review_json_default.prompt" at its last underscore.
func parsePromptName(name string) (promptID, error) {
	base := strings.TrimSuffix(name, path.Ext(name))
	i := strings.LastIndex(base, "_")
	if i <= 0 || i == len(base)-1 {
		return promptID{}, fmt.Errorf("invalid prompt file name %q: want <key>_<provider>.prompt", name)
	}
	return promptID{key: PromptKey(base[:i]), provider: ModelProvider(base[i+1:])}, nil
}

// Render executes the prompt for key, preferring the provider's own variant.
func (pm *PromptManager) Render(key PromptKey, provider ModelProvider, data ReviewPromptData) (string, error) {
	tmpl, ok := pm.templates[promptID{key, provider}]
	if !ok {
		tmpl, ok = pm.templates[promptID{key, DefaultProvider}]
	}
	if !ok {
		return "", fmt.Errorf("no prompt %q for provider %q", key, provider)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %q: %w", key, err)
	}
	return b.String(), nil
}
