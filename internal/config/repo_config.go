package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/code-reviewer/internal/core"
)

// ReviewConfigFile is the per-repository settings file.
const ReviewConfigFile = ".codereview.yaml"

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParsing  = errors.New("config parsing failed")
)

// reviewFile mirrors the layout of .codereview.yaml.
type reviewFile struct {
	Review struct {
		MaxDiffSize     *int     `yaml:"max_diff_size"`
		IgnorePatterns  []string `yaml:"ignore_patterns"`
		IncludePatterns []string `yaml:"include_patterns"`
		LanguageRules   bool     `yaml:"language_rules"`
	} `yaml:"review"`
	Model struct {
		Name        string   `yaml:"name"`
		Temperature *float64 `yaml:"temperature"`
	} `yaml:"model"`
	CustomRules []core.CustomRule `yaml:"custom_rules"`
}

// LoadReviewConfig reads .codereview.yaml from repoPath. When the file does not
// exist it returns the defaults together with ErrConfigNotFound, which callers
// may treat as informational.
func LoadReviewConfig(repoPath string) (core.ReviewConfig, error) {
	path := filepath.Join(repoPath, ReviewConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.DefaultReviewConfig(), ErrConfigNotFound
		}
		return core.DefaultReviewConfig(), fmt.Errorf("failed to read %s: %w", ReviewConfigFile, err)
	}
	return ParseReviewConfig(data)
}

// ParseReviewConfig decodes the YAML body of a .codereview.yaml file.
// An empty document yields the defaults.
func ParseReviewConfig(data []byte) (core.ReviewConfig, error) {
	var f reviewFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return core.DefaultReviewConfig(), fmt.Errorf("%w: %w", ErrConfigParsing, err)
	}

	temperature := core.DefaultTemperature
	if f.Model.Temperature != nil {
		temperature = *f.Model.Temperature
	}

	cfg := core.NewReviewConfig(f.Model.Name, temperature, f.CustomRules, f.Review.IgnorePatterns, f.Review.IncludePatterns)
	cfg.LanguageRules = f.Review.LanguageRules
	if f.Review.MaxDiffSize != nil {
		cfg.MaxDiffFiles = *f.Review.MaxDiffSize
	}
	return cfg, nil
}
