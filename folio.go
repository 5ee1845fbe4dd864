// Package folio is a personal blog and portfolio generator built with Go, Echo
// and templ. It reads markdown posts from a content directory and either
// writes a static site with feeds and a sitemap, or serves a live preview.
//
// Sites can provide their own templ components via the ViewFuncs struct;
// folio handles loading, aggregation, handlers, middleware and output.
package folio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/views"
)

// ViewFuncs holds the templ components the server and builder call when
// rendering pages. views.Default() provides a complete set.
type ViewFuncs = views.Funcs

// shutdownTimeout bounds graceful shutdown of the preview server.
const shutdownTimeout = 5 * time.Second

// App is the central folio application. It wires together the loader, the
// snapshot cache, handlers, middleware and the page components.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Cache   *SnapshotCache
	Views   ViewFuncs
	Logger  *slog.Logger
	Metrics *BuildRecorder

	loader         *content.Loader
	renderer       *markdown.Renderer
	contactLimiter *ContactLimiter
	forwarder      *ContactForwarder
	httpClient     HTTPDoer
	registry       *prometheus.Registry
	customRoutes   []func(*App)
	now            func() time.Time
	watch          bool
	setupOnce      sync.Once
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
		Logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
	}

	a.Metrics = NewBuildRecorder(a.registry)
	a.loader = content.NewLoader(a.Config.ContentDir)
	a.loader.Logger = a.Logger
	a.loader.SkipInvalid = a.Config.SkipInvalid
	a.renderer = markdown.New(markdown.WithSiteURL(a.Config.URL))
	a.Cache = NewSnapshotCache(a.loadSnapshot, a.Config.CacheTTL)
	a.forwarder = NewContactForwarder(a.Config.ContactEndpoint, a.httpClient)
	return a
}

// loadSnapshot reads every post and aggregates them. Load failures are
// counted before being returned.
func (a *App) loadSnapshot(ctx context.Context) (content.Snapshot, error) {
	posts, err := a.loader.LoadAllPosts(ctx)
	if err != nil {
		a.Metrics.IncLoadError(err)
		return content.Snapshot{}, err
	}
	opts := a.Config.SnapshotOptions()
	opts.Logger = a.Logger
	snap := content.NewSnapshot(posts, opts)

	about, err := a.loader.LoadPage(ctx, content.AboutPage)
	switch {
	case err == nil:
		snap.About = &about
	case errors.Is(err, content.ErrNotFound):
	default:
		var perr *content.ParseError
		if !a.Config.SkipInvalid || !errors.As(err, &perr) {
			a.Metrics.IncLoadError(err)
			return content.Snapshot{}, err
		}
		a.Logger.Warn("skipping invalid page", "page", content.AboutPage, "error", err)
	}

	a.Metrics.SetPosts(len(snap.Listed))
	return snap, nil
}

// Start sets up middleware and routes and serves the preview site until ctx
// is cancelled.
func (a *App) Start(ctx context.Context) error {
	a.setup()

	if a.watch {
		w, err := NewContentWatcher(a.Config.ContentDir, a.Logger, a.Cache.Invalidate)
		if err != nil {
			return fmt.Errorf("folio: watch content: %w", err)
		}
		go w.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("preview server listening", "addr", a.Config.Addr, "url", a.Config.URL)
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("folio: shutdown: %w", err)
	}
	return nil
}

// Handler returns the preview site as an http.Handler without listening.
func (a *App) Handler() http.Handler {
	a.setup()
	return a.Echo
}

func (a *App) setup() {
	a.setupOnce.Do(func() {
		if a.Config.SessionSecret == "" {
			a.Config.SessionSecret = uuid.NewString()
			a.Logger.Warn("SESSION_SECRET not set; using a random secret, sessions will not survive a restart")
		}
		a.contactLimiter = NewContactLimiter(a.Config.ContactLimit, a.Config.ContactWindow)
		a.setupMiddleware()
		a.setupRoutes()
		for _, fn := range a.customRoutes {
			fn(a)
		}
	})
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	for _, name := range rootAssets {
		e.GET("/"+name, a.handleRootAsset(name))
	}
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/metrics", a.handleMetrics())

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/rss/feed.xml", a.handleFeed(feedRSS))
	e.GET("/rss/atom.xml", a.handleFeed(feedAtom))
	e.GET("/rss/feed.json", a.handleFeed(feedJSON))
	e.GET("/atom.xml", a.handleFeed(feedAtom))
	e.GET("/search.json", a.handleSearchIndex)
	e.GET("/api/search", a.handleAPISearch)

	e.GET("/", a.handleHome)
	e.GET("/search", a.handleSearch)
	e.GET("/about", a.handleAbout)
	e.GET("/contact", a.handleContact)
	e.POST("/contact", a.handleContactSubmit)
	e.GET("/tag/:tag", a.handleTag)
	e.GET("/:slug", a.handlePost)
}

// Close releases background resources.
func (a *App) Close() error {
	if a.contactLimiter != nil {
		a.contactLimiter.Stop()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
