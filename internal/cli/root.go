// Package cli holds the applytrack command-line interface: the kong command
// tree, the shared run context and the logger setup.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sakif/applytrack/internal/client"
	"github.com/sakif/applytrack/internal/store"
)

// CLI is the root command tree parsed by kong.
type CLI struct {
	Server  string `help:"API server base URL." default:"http://localhost:5001" env:"APPLYTRACK_SERVER"`
	Debug   bool   `help:"Enable debug logging."`
	LogFile string `help:"Write logs to this file (rotated) instead of stderr." type:"path" env:"APPLYTRACK_LOG_FILE"`

	Tui   TuiCmd   `cmd:"" help:"Launch the interactive TUI." default:"1"`
	List  ListCmd  `cmd:"" help:"List applications, newest first."`
	Add   AddCmd   `cmd:"" help:"Record a new application."`
	Edit  EditCmd  `cmd:"" help:"Edit an application."`
	Rm    RmCmd    `cmd:"" help:"Delete an application."`
	Stats StatsCmd `cmd:"" help:"Show totals and rejection rate."`
}

// Context is passed to every command's Run method.
type Context struct {
	Ctx    context.Context
	Store  *store.Store
	Out    io.Writer
	Logger *slog.Logger
}

// NewContext builds the store over an HTTP client for c.Server.
func (c *CLI) NewContext(ctx context.Context, out io.Writer, logger *slog.Logger) *Context {
	api := client.New(c.Server)
	return &Context{
		Ctx:    ctx,
		Store:  store.New(api, logger),
		Out:    out,
		Logger: logger,
	}
}

// NewLogger returns a slog.Logger backed by charmbracelet/log.
//
// Logs go to LogFile when set. Otherwise they go to stderr, except in the
// TUI where stderr output would tear the alternate screen; there they are
// dropped.
func (c *CLI) NewLogger(command string) *slog.Logger {
	var w io.Writer = os.Stderr
	switch {
	case c.LogFile != "":
		w = &lumberjack.Logger{
			Filename:   c.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	case command == "tui":
		w = io.Discard
	}

	level := log.WarnLevel
	if c.Debug {
		level = log.DebugLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportCaller:    c.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "applytrack",
	})
	return slog.New(handler)
}
