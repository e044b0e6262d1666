// Command pcode analyzes PeopleCode source: it parses, builds scopes,
// infers types, and reports diagnostics.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/pcodetools/pcode/internal/config"
)

var version = "0.3.0"

// Context carries the loaded configuration and logger into commands.
type Context struct {
	Config  *config.Config
	Logger  *slog.Logger
	Verbose bool
}

// CLI is the command-line surface.
var CLI struct {
	Config  string `help:"Configuration file path" default:"pcode.toml"`
	Verbose bool   `help:"Enable verbose output" short:"v"`

	Check   CheckCmd   `cmd:"" help:"Parse and type-check PeopleCode files"`
	Tokens  TokensCmd  `cmd:"" help:"Dump the token stream of a file"`
	Watch   WatchCmd   `cmd:"" help:"Re-check files as they change"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd prints the tool version.
type VersionCmd struct{}

func (cmd *VersionCmd) Run() error {
	fmt.Printf("pcode v%s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelWarn
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	appCtx := &Context{Config: cfg, Logger: logger, Verbose: CLI.Verbose}
	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
