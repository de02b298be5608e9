// Command applytrack is the terminal client for an applytrack server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/sakif/applytrack/internal/cli"
)

func main() {
	var root cli.CLI
	kctx := kong.Parse(&root,
		kong.Name("applytrack"),
		kong.Description("Track the companies you applied to."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := root.NewLogger(kctx.Command())
	logger.Debug("starting", "command", kctx.Command(), "server", root.Server)

	if err := kctx.Run(root.NewContext(ctx, os.Stdout, logger)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
