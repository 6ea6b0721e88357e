package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/code-reviewer/internal/config"
	"github.com/sevigo/code-reviewer/internal/logger"
)

var (
	cfgViper = viper.New()
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "code-reviewer",
	Short: "code-reviewer reviews Git changes with an LLM.",
	Long: `code-reviewer sends staged, uncommitted or last-commit changes (or a GitHub
pull request) to an LLM and reports critical issues, warnings, suggestions and
positive notes. Repository rules are read from .codereview.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	flags := rootCmd.PersistentFlags()
	flags.String("provider", "", "LLM provider (gemini, ollama, openai, anthropic)")
	flags.String("model", "", "Model name")
	flags.String("github-token", "", "GitHub token used for --pr reviews")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging and timing output")

	for key, flag := range map[string]string{
		"ai.provider":  "provider",
		"ai.model":     "model",
		"github.token": "github-token",
	} {
		if err := cfgViper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to bind flag %s: %v\n", flag, err)
			os.Exit(1)
		}
	}
}

// loadConfig reads config.yaml, the environment and the bound flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgViper)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger logs to stderr so that stdout stays clean for review output.
// Without --verbose only warnings and errors are shown.
func newLogger(cfg *config.Config) *slog.Logger {
	logCfg := cfg.Logging
	if verbose {
		logCfg.Level = "debug"
	} else if !strings.EqualFold(logCfg.Level, "error") {
		logCfg.Level = "warn"
	}
	if logCfg.Output == "stdout" {
		logCfg.Output = "stderr"
	}
	return logger.NewLogger(logCfg, nil)
}
