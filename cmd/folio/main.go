// Command folio builds and previews a markdown blog.
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// version is set at build time via ldflags.
var version = "dev"

// Global carries state shared by every command.
type Global struct {
	Logger *slog.Logger
}

// CLI is the command tree and its global flags.
type CLI struct {
	Config  string `short:"c" help:"Site configuration file" default:"site.yaml" type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Build   BuildCmd   `cmd:"" help:"Write the static site"`
	Serve   ServeCmd   `cmd:"" help:"Serve a live preview of the site"`
	New     NewCmd     `cmd:"" help:"Create a new site"`
	Post    PostCmd    `cmd:"" help:"Create a new post in the content directory"`
	Version VersionCmd `cmd:"" help:"Print the folio version"`
}

// AfterApply sets up logging once flags are parsed.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	g.Logger = logger
	return nil
}

func main() {
	global := &Global{Logger: slog.Default()}
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Bind(global),
		kong.Name("folio"),
		kong.Description("A markdown blog generator built with Go, Echo and templ."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&cli); err != nil {
		global.Logger.Error(ctx.Command()+" failed", "error", err)
		os.Exit(1)
	}
}
