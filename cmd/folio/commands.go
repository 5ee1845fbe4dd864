package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eringen/folio"
	"github.com/eringen/folio/views"
)

// BuildCmd writes the static site.
type BuildCmd struct {
	Out         string `short:"o" help:"Output directory (overrides output_dir)" type:"path"`
	Unpublished bool   `help:"List unpublished posts"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := folio.LoadConfig(root.Config)
	if err != nil {
		return err
	}
	if b.Out != "" {
		cfg.OutputDir = b.Out
	}
	if b.Unpublished {
		cfg.ShowUnpublished = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := folio.New(cfg, views.Default(), folio.WithLogger(g.Logger))
	defer app.Close()
	report, err := app.Build(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Built %d pages (%d posts, %d tags) into %s in %s\n",
		report.Pages, report.Posts, report.Tags, report.OutDir, report.Duration.Round(time.Millisecond))
	return nil
}

// ServeCmd runs the preview server.
type ServeCmd struct {
	Addr  string `short:"a" help:"Listen address (overrides addr)"`
	Watch bool   `short:"w" help:"Reload content when files change"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := folio.LoadConfig(root.Config)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Addr = s.Addr
	}

	opts := []folio.Option{folio.WithLogger(g.Logger)}
	if s.Watch {
		opts = append(opts, folio.WithWatch())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := folio.New(cfg, views.Default(), opts...)
	defer app.Close()
	return app.Start(ctx)
}

// VersionCmd prints the build version.
type VersionCmd struct{}

func (VersionCmd) Run() error {
	fmt.Printf("folio %s\n", version)
	return nil
}
