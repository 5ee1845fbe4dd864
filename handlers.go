package folio

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/feed"
	"github.com/eringen/folio/sitemap"
	"github.com/eringen/folio/views"
)

// rootAssets are static files served from the site root rather than /public.
var rootAssets = []string{"favicon.png", "favicon.svg", "logo.svg"}

const (
	searchLimit    = 20
	apiSearchLimit = 50
)

type feedKind int

const (
	feedRSS feedKind = iota
	feedAtom
	feedJSON
)

func (a *App) handleHome(c echo.Context) error {
	snap, err := a.Cache.Get(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(a.Config.viewSite(true), homeData(snap)))
}

func homeData(snap content.Snapshot) views.HomeData {
	return views.HomeData{
		Latest:   snap.Latest(),
		Featured: snap.Featured,
		HasPosts: snap.HasPosts,
		Tags:     snap.TagCounts,
	}
}

func (a *App) handlePost(c echo.Context) error {
	snap, err := a.Cache.Get(c.Request().Context())
	if err != nil {
		return err
	}
	post, ok := snap.Post(c.Param("slug"))
	if !ok {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config.viewSite(true)))
	}
	rendered, err := content.Render(post, a.renderer)
	if err != nil {
		return fmt.Errorf("render post %s: %w", post.Slug, err)
	}
	return Render(c, a.Views.Post(a.Config.viewSite(true), views.NewPostData(rendered, snap.Listed, snap.TagCounts)))
}

func (a *App) handleTag(c echo.Context) error {
	snap, err := a.Cache.Get(c.Request().Context())
	if err != nil {
		return err
	}
	view, ok := snap.ForTag(c.Param("tag"))
	if !ok {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config.viewSite(true)))
	}
	return Render(c, a.Views.Tag(a.Config.viewSite(true), views.TagData{Tag: view.Tag, Posts: view.Posts, Tags: snap.TagCounts}))
}

func (a *App) handleAbout(c echo.Context) error {
	snap, err := a.Cache.Get(c.Request().Context())
	if err != nil {
		return err
	}
	if snap.About == nil {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config.viewSite(true)))
	}
	data, err := a.aboutData(snap)
	if err != nil {
		return err
	}
	return Render(c, a.Views.About(a.Config.viewSite(true), data))
}

func (a *App) aboutData(snap content.Snapshot) (views.AboutData, error) {
	page, err := content.RenderPage(*snap.About, a.renderer)
	if err != nil {
		return views.AboutData{}, fmt.Errorf("render page %s: %w", snap.About.Slug, err)
	}
	return views.AboutData{
		Page:     page,
		Featured: snap.Featured,
		HasPosts: snap.HasPosts,
		Tags:     snap.TagCounts,
	}, nil
}

func (a *App) handleSearch(c echo.Context) error {
	snap, err := a.Cache.Get(c.Request().Context())
	if err != nil {
		return err
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	return Render(c, a.Views.Search(a.Config.viewSite(true), views.SearchData{
		Query:   q,
		Results: content.Search(q, snap.Listed, searchLimit),
	}))
}

// searchHit is the JSON shape of one search result.
type searchHit struct {
	Slug        string   `json:"slug"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
	Score       float64  `json:"score,omitempty"`
}

func newSearchHit(siteURL string, p content.Post, score float64) searchHit {
	return searchHit{
		Slug:        p.Slug,
		URL:         content.PostURL(siteURL, p.Slug),
		Title:       p.Meta.Title,
		Description: p.Meta.Description,
		Date:        p.Meta.Date,
		Tags:        p.Meta.Tags,
		Score:       score,
	}
}

func (a *App) handleAPISearch(c echo.Context) error {
	snap, err := a.Cache.Get(c.Request().Context())
	if err != nil {
		return err
	}
	limit := apiSearchLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, apiSearchLimit)
	}
	results := content.Rank(c.QueryParam("q"), snap.Listed)
	if len(results) > limit {
		results = results[:limit]
	}
	hits := make([]searchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, newSearchHit(a.Config.URL, r.Post, r.Score))
	}
	return c.JSON(http.StatusOK, hits)
}

func (a *App) handleSearchIndex(c echo.Context) error {
	snap, err := a.Cache.Get(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, searchIndex(a.Config.URL, snap))
}

// searchIndex lists every listed post newest first, for client-side search.
func searchIndex(siteURL string, snap content.Snapshot) []searchHit {
	latest := snap.Latest()
	out := make([]searchHit, 0, len(latest))
	for _, p := range latest {
		out = append(out, newSearchHit(siteURL, p, 0))
	}
	return out
}

func (a *App) handleFeed(kind feedKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		snap, err := a.Cache.Get(c.Request().Context())
		if err != nil {
			return err
		}
		out, err := feed.Generate(snap.Listed, a.Config.FeedConfig(a.now))
		if err != nil {
			return err
		}
		switch kind {
		case feedAtom:
			return c.Blob(http.StatusOK, "application/atom+xml; charset=utf-8", []byte(out.Atom1))
		case feedJSON:
			return c.Blob(http.StatusOK, "application/feed+json; charset=utf-8", []byte(out.JSON1))
		default:
			return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(out.RSS2))
		}
	}
}

func (a *App) handleSitemap(c echo.Context) error {
	snap, err := a.Cache.Get(c.Request().Context())
	if err != nil {
		return err
	}
	doc, err := sitemap.Generate(snap.Listed, a.Config.URL, a.Config.sitemapOrder())
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", []byte(doc))
}

func (a *App) handleRootAsset(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.File(filepath.Join(a.Config.StaticDir, name))
	}
}

func (a *App) handleRobots(c echo.Context) error {
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", a.robotsTxt())
}

// robotsTxt returns the static dir's robots.txt, or a permissive default
// pointing at the sitemap.
func (a *App) robotsTxt() []byte {
	if data, err := os.ReadFile(filepath.Join(a.Config.StaticDir, "robots.txt")); err == nil {
		return data
	}
	return []byte("User-agent: *\nAllow: /\n\nSitemap: " + content.JoinURL(a.Config.URL, sitemap.FileName) + "\n")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	site := a.Config.viewSite(true)
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if (ok && he.Code == http.StatusNotFound) || errors.Is(err, content.ErrNotFound) {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(site))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", "path", c.Request().URL.Path, "error", err)
		_ = RenderStatus(c, code, a.Views.ServerError(site))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
