package folio

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/views"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func writeSitePost(t *testing.T, dir, slug, date string, tags []string, extra string) {
	t.Helper()
	doc := fmt.Sprintf("---\ntitle: %s title\ndescription: About %s\ntags: [%s]\nimage: /public/images/%s.png\ndate: %s\n%s---\n# %s\n\nSome words about %s.\n",
		slug, slug, strings.Join(tags, ", "), slug, date, extra, slug, slug)
	require.NoError(t, os.WriteFile(filepath.Join(dir, slug+".md"), []byte(doc), 0o644))
}

// newTestSite writes a small site: two listed posts and one draft.
func newTestSite(t *testing.T) SiteConfig {
	t.Helper()
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	staticDir := filepath.Join(root, "public")
	require.NoError(t, os.MkdirAll(contentDir, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(staticDir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "css", "site.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "favicon.png"), []byte("png"), 0o644))

	writeSitePost(t, contentDir, "first-post", "2021-01-01", []string{"Go", "Web"}, "")
	writeSitePost(t, contentDir, "second-post", "2021-02-01", []string{"Go"}, "featured: true\n")
	writeSitePost(t, contentDir, "draft-post", "2021-03-01", []string{"Go", "Secret"}, "published: false\n")

	return SiteConfig{
		Name:       "Test Blog",
		URL:        "https://example.com",
		Author:     "Jane",
		ContentDir: contentDir,
		StaticDir:  staticDir,
		OutputDir:  filepath.Join(root, "dist"),
	}
}

func writeAboutPage(t *testing.T, cfg SiteConfig) {
	t.Helper()
	dir := filepath.Join(cfg.ContentDir, content.PagesDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	doc := "---\ntitle: Hey there\ndescription: Who writes this blog\n---\nI write about *Go*.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "about.md"), []byte(doc), 0o644))
}

func newTestApp(t *testing.T, cfg SiteConfig, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return testNow }),
	}, opts...)
	a := New(cfg, views.Default(), opts...)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func readOut(t *testing.T, out, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestBuild_WritesSite(t *testing.T) {
	cfg := newTestSite(t)
	a := newTestApp(t, cfg)

	report, err := a.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.Posts)
	require.Equal(t, 2, report.Tags)
	// home, three posts, two tags, contact, 404
	require.Equal(t, 8, report.Pages)
	require.Equal(t, cfg.OutputDir, report.OutDir)

	out := cfg.OutputDir
	home := readOut(t, out, "index.html")
	require.Contains(t, home, "second-post title")
	require.NotContains(t, home, "draft-post title")

	post := readOut(t, out, "first-post/index.html")
	require.Contains(t, post, "<h1")
	require.Contains(t, post, "Some words about first-post.")

	// Drafts get a page but stay out of listings.
	require.FileExists(t, filepath.Join(out, "draft-post", "index.html"))
	require.FileExists(t, filepath.Join(out, "tag", "go", "index.html"))
	require.FileExists(t, filepath.Join(out, "tag", "web", "index.html"))
	require.NoFileExists(t, filepath.Join(out, "tag", "secret", "index.html"))
	require.FileExists(t, filepath.Join(out, "contact", "index.html"))
	require.FileExists(t, filepath.Join(out, "404.html"))

	require.FileExists(t, filepath.Join(out, "public", "css", "site.css"))
	require.FileExists(t, filepath.Join(out, "favicon.png"))
	require.NoFileExists(t, filepath.Join(out, "logo.svg"))

	// No about page in the content dir: no page and no nav link.
	require.NoFileExists(t, filepath.Join(out, "about", "index.html"))
	require.NotContains(t, home, `href="/about"`)
}

func TestBuild_AboutPage(t *testing.T) {
	cfg := newTestSite(t)
	cfg.AuthorLink = "https://example.com/contact"
	writeAboutPage(t, cfg)
	a := newTestApp(t, cfg)

	report, err := a.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 9, report.Pages)
	require.Equal(t, 2, report.Posts)

	about := readOut(t, cfg.OutputDir, "about/index.html")
	require.Contains(t, about, "<title>Hey there | Test Blog</title>")
	require.Contains(t, about, "<em>Go</em>")
	require.Contains(t, about, `rel="author">Jane</a>`)
	require.Contains(t, about, "second-post title")
	require.Contains(t, readOut(t, cfg.OutputDir, "index.html"), `<a href="/about">About</a>`)
	require.NoDirExists(t, filepath.Join(cfg.OutputDir, "pages"))
}

func TestBuild_InvalidAboutPage(t *testing.T) {
	cfg := newTestSite(t)
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.ContentDir, content.PagesDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ContentDir, content.PagesDir, "about.md"), []byte("---\ndescription: untitled\n---\nbody"), 0o644))

	_, err := newTestApp(t, cfg).Build(context.Background())
	require.Error(t, err)

	cfg.SkipInvalid = true
	cfg.OutputDir = filepath.Join(t.TempDir(), "dist")
	report, err := newTestApp(t, cfg).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 8, report.Pages)
}

func TestBuild_WritesFeedsSitemapAndIndex(t *testing.T) {
	cfg := newTestSite(t)
	a := newTestApp(t, cfg)

	_, err := a.Build(context.Background())
	require.NoError(t, err)
	out := cfg.OutputDir

	rss, err := gofeed.NewParser().ParseString(readOut(t, out, "rss/feed.xml"))
	require.NoError(t, err)
	require.Len(t, rss.Items, 2)
	require.Equal(t, "https://example.com/second-post", rss.Items[0].Link)

	require.Equal(t, "https://example.com/rss/feed.xml", rss.FeedLink)

	require.FileExists(t, filepath.Join(out, "rss", "atom.xml"))
	require.FileExists(t, filepath.Join(out, "rss", "feed.json"))

	// The nav links /atom.xml, so the static site carries it at the root.
	require.FileExists(t, filepath.Join(out, "atom.xml"))
	require.Equal(t, readOut(t, out, "rss/atom.xml"), readOut(t, out, "atom.xml"))

	sm := readOut(t, out, "sitemap.xml")
	require.Contains(t, sm, "<loc>https://example.com</loc>")
	require.Contains(t, sm, "<loc>https://example.com/first-post</loc>")
	require.NotContains(t, sm, "draft-post")

	var hits []searchHit
	require.NoError(t, json.Unmarshal([]byte(readOut(t, out, SearchIndexFile)), &hits))
	require.Len(t, hits, 2)
	require.Equal(t, "second-post", hits[0].Slug)

	robots := readOut(t, out, "robots.txt")
	require.Contains(t, robots, "Sitemap: https://example.com/sitemap.xml")
}

func TestBuild_ShowUnpublishedListsDrafts(t *testing.T) {
	cfg := newTestSite(t)
	cfg.ShowUnpublished = true
	a := newTestApp(t, cfg)

	report, err := a.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, report.Posts)
	require.FileExists(t, filepath.Join(cfg.OutputDir, "tag", "secret", "index.html"))
}

func TestBuild_InvalidPostFailsBuild(t *testing.T) {
	cfg := newTestSite(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ContentDir, "broken.md"), []byte("---\ntitle: [\n---\nbody"), 0o644))
	a := newTestApp(t, cfg)

	_, err := a.Build(context.Background())
	require.Error(t, err)
	require.NoFileExists(t, filepath.Join(cfg.OutputDir, "index.html"))
}

func TestBuild_SkipInvalidContinues(t *testing.T) {
	cfg := newTestSite(t)
	cfg.SkipInvalid = true
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ContentDir, "broken.md"), []byte("---\ntitle: [\n---\nbody"), 0o644))
	a := newTestApp(t, cfg)

	report, err := a.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.Posts)
}

func TestBuild_StaticRobotsWins(t *testing.T) {
	cfg := newTestSite(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.StaticDir, "robots.txt"), []byte("User-agent: *\nDisallow: /\n"), 0o644))
	a := newTestApp(t, cfg)

	_, err := a.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, "User-agent: *\nDisallow: /\n", readOut(t, cfg.OutputDir, "robots.txt"))
}

func TestBuild_ContactFormPostsToEndpoint(t *testing.T) {
	cfg := newTestSite(t)
	cfg.ContactEndpoint = "https://forms.example.net/f/abc"
	a := newTestApp(t, cfg)

	_, err := a.Build(context.Background())
	require.NoError(t, err)
	page := readOut(t, cfg.OutputDir, "contact/index.html")
	require.Contains(t, page, `action="https://forms.example.net/f/abc"`)
	require.NotContains(t, page, `name="_csrf"`)
}

func TestBuild_Thumbnails(t *testing.T) {
	cfg := newTestSite(t)
	cfg.Thumbnails = true
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.StaticDir, "images"), 0o755))
	f, err := os.Create(filepath.Join(cfg.StaticDir, "images", "first-post.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 1200, 600))))
	require.NoError(t, f.Close())
	a := newTestApp(t, cfg)

	report, err := a.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Thumbs)
	require.FileExists(t, filepath.Join(cfg.OutputDir, "thumbs", "first-post.jpg"))
}
