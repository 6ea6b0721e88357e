// Command code-reviewer reviews Git changes and pull requests with an LLM.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var fail *failOnError
		if !errors.As(err, &fail) {
			color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "Error: ")
			color.New(color.FgRed).Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
