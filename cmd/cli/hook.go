package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/code-reviewer/internal/gitutil"
)

const preCommitHook = "pre-commit"

var (
	hookRepo  string
	hookForce bool
)

// preCommitScript blocks the commit when the staged review reports critical issues.
const preCommitScript = `if ! command -v code-reviewer >/dev/null 2>&1; then
  echo "code-reviewer not found in PATH, skipping AI review"
  exit 0
fi
code-reviewer review --diff-type staged --fail-on critical
`

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the Git pre-commit hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Review staged changes before every commit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := gitutil.InstallHook(hookRepo, preCommitHook, preCommitScript, hookForce)
		if errors.Is(err, gitutil.ErrForeignHook) {
			return fmt.Errorf("%w (use --force to replace it)", err)
		}
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		successColor.Fprintln(out, "✅ Pre-commit hook installed successfully!")
		fmt.Fprintln(out, "The AI code reviewer will now run automatically before each commit.")
		dimColor.Fprintf(out, "To disable, run: code-reviewer hook uninstall (or remove %s)\n", path)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the pre-commit hook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := gitutil.UninstallHook(hookRepo, preCommitHook)
		if err != nil {
			return err
		}
		successColor.Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", path)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	hookCmd.PersistentFlags().StringVar(&hookRepo, "repo", ".", "Path inside the repository")
	hookInstallCmd.Flags().BoolVar(&hookForce, "force", false, "Replace an existing pre-commit hook")
	hookCmd.AddCommand(hookInstallCmd, hookUninstallCmd)
	rootCmd.AddCommand(hookCmd)
}
