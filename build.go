package folio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/feed"
	"github.com/eringen/folio/sitemap"
	"github.com/eringen/folio/views"
)

// SearchIndexFile is the client-side search index written by Build.
const SearchIndexFile = "search.json"

// BuildReport summarizes a static build.
type BuildReport struct {
	OutDir   string
	Posts    int
	Tags     int
	Pages    int
	Thumbs   int
	Duration time.Duration
}

// Build loads every post and writes the static site to Config.OutputDir:
// pages (including the about page when present), feeds, sitemap, search index, robots.txt, static assets and
// optional thumbnails. Any load or write failure aborts the build.
func (a *App) Build(ctx context.Context) (report BuildReport, err error) {
	start := a.now()
	out := a.Config.OutputDir
	report.OutDir = out
	defer func() {
		report.Duration = a.now().Sub(start)
		a.Metrics.ObserveBuild(report.Duration, err)
	}()

	snap, err := a.loadSnapshot(ctx)
	if err != nil {
		return report, fmt.Errorf("load posts: %w", err)
	}
	report.Posts = len(snap.Listed)
	report.Tags = len(snap.TagCounts)

	if err := os.MkdirAll(out, 0o755); err != nil {
		return report, fmt.Errorf("create output dir: %w", err)
	}

	pages, err := a.writePages(ctx, out, snap)
	if err != nil {
		return report, err
	}
	report.Pages = pages

	if err := a.writeArtifacts(out, snap); err != nil {
		return report, err
	}

	if err := a.copyStatic(out); err != nil {
		return report, err
	}

	if a.Config.Thumbnails {
		thumbs, err := GenerateThumbnails(snap.Listed, a.Config.StaticDir, out, a.Logger)
		if err != nil {
			return report, err
		}
		report.Thumbs = len(thumbs)
	}

	a.Logger.Info("build complete",
		"out", out,
		"posts", report.Posts,
		"tags", report.Tags,
		"pages", report.Pages,
		"duration", a.now().Sub(start))
	return report, nil
}

// writePages renders every HTML page concurrently and returns the count.
func (a *App) writePages(ctx context.Context, out string, snap content.Snapshot) (int, error) {
	site := a.Config.viewSite(false)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	count := 0
	submit := func(rel string, render func(ctx context.Context, path string) error) {
		count++
		path := filepath.Join(out, filepath.FromSlash(rel))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return render(gctx, path)
		})
	}

	submit("index.html", func(ctx context.Context, path string) error {
		return renderFile(ctx, path, a.Views.Home(site, homeData(snap)))
	})
	for _, p := range snap.Posts {
		submit(p.Slug+"/index.html", func(ctx context.Context, path string) error {
			rendered, err := content.Render(p, a.renderer)
			if err != nil {
				return fmt.Errorf("render post %s: %w", p.Slug, err)
			}
			return renderFile(ctx, path, a.Views.Post(site, views.NewPostData(rendered, snap.Listed, snap.TagCounts)))
		})
	}
	for _, t := range snap.Tags() {
		view, ok := snap.ForTag(t.Slug)
		if !ok {
			continue
		}
		submit("tag/"+t.Slug+"/index.html", func(ctx context.Context, path string) error {
			return renderFile(ctx, path, a.Views.Tag(site, views.TagData{Tag: view.Tag, Posts: view.Posts, Tags: snap.TagCounts}))
		})
	}
	if snap.About != nil {
		submit("about/index.html", func(ctx context.Context, path string) error {
			data, err := a.aboutData(snap)
			if err != nil {
				return err
			}
			return renderFile(ctx, path, a.Views.About(site, data))
		})
	}
	submit("contact/index.html", func(ctx context.Context, path string) error {
		return renderFile(ctx, path, a.Views.Contact(site, views.ContactData{Action: a.Config.ContactEndpoint}))
	})
	submit("404.html", func(ctx context.Context, path string) error {
		return renderFile(ctx, path, a.Views.NotFound(site))
	})

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return count, nil
}

// writeArtifacts writes the feeds, sitemap, search index and robots.txt.
func (a *App) writeArtifacts(out string, snap content.Snapshot) error {
	feeds, err := feed.Generate(snap.Listed, a.Config.FeedConfig(a.now))
	if err != nil {
		return err
	}
	if err := feeds.Write(out); err != nil {
		return err
	}

	doc, err := sitemap.Generate(snap.Listed, a.Config.URL, a.Config.sitemapOrder())
	if err != nil {
		return err
	}
	if err := sitemap.Write(out, doc); err != nil {
		return err
	}

	index, err := json.MarshalIndent(searchIndex(a.Config.URL, snap), "", "  ")
	if err != nil {
		return fmt.Errorf("encode search index: %w", err)
	}
	if err := writeFile(filepath.Join(out, SearchIndexFile), index); err != nil {
		return err
	}

	return writeFile(filepath.Join(out, "robots.txt"), a.robotsTxt())
}

// copyStatic mirrors the static dir under out/public and lifts the root
// assets to out. A missing static dir is not an error.
func (a *App) copyStatic(out string) error {
	src := a.Config.StaticDir
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := copyDir(src, filepath.Join(out, "public")); err != nil {
		return fmt.Errorf("copy static: %w", err)
	}
	for _, name := range rootAssets {
		err := copyFile(filepath.Join(src, name), filepath.Join(out, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("copy %s: %w", name, err)
		}
	}
	return nil
}

func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	outFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(outFile, in); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}
