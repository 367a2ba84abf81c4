package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentuity/go-paramcache/tui"
	"github.com/spf13/cobra"
)

// execute runs cmd and reports a failure on stderr, returning the exit code.
func execute(ctx context.Context, cmd *cobra.Command, stderr io.Writer) int {
	if err := cmd.ExecuteContext(ctx); err != nil {
		tui.ShowError(stderr, "%s", err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, newRootCommand(), os.Stderr)
	stop()
	os.Exit(code)
}
