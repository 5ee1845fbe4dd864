package folio

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/feed"
	"github.com/eringen/folio/sitemap"
	"github.com/eringen/folio/views"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for feeds and meta tags
	Author      string `yaml:"author"`      // Author name for feeds and JSON-LD
	AuthorEmail string `yaml:"author_email"`
	AuthorLink  string `yaml:"author_link"`
	Logo        string `yaml:"logo"`    // Feed image (default {URL}/logo.svg)
	Favicon     string `yaml:"favicon"` // Feed icon (default {URL}/favicon.png)

	ContentDir string `yaml:"content_dir"` // Markdown posts (default "content")
	StaticDir  string `yaml:"static_dir"`  // Static assets (default "public")
	OutputDir  string `yaml:"output_dir"`  // Build output (default "dist")

	Addr string `yaml:"addr"` // Preview listen address (default ":3000")

	ShowUnpublished bool   `yaml:"show_unpublished"`
	SkipInvalid     bool   `yaml:"skip_invalid"`
	Featured        string `yaml:"featured"`      // "latest" (default) or "earliest"
	SitemapOrder    string `yaml:"sitemap_order"` // "newest" (default) or "ascending"
	Thumbnails      bool   `yaml:"thumbnails"`

	ContactEndpoint string        `yaml:"contact_endpoint"` // Form service URL; empty disables forwarding
	ContactLimit    int           `yaml:"contact_limit"`    // Messages per window per IP (default 3)
	ContactWindow   time.Duration `yaml:"contact_window"`   // default 10m

	SessionSecret string `yaml:"session_secret"`
	CookieSecure  bool   `yaml:"cookie_secure"` // Set true for HTTPS

	CacheTTL time.Duration `yaml:"cache_ttl"` // Snapshot cache TTL (default 5m)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.OutputDir == "" {
		c.OutputDir = "dist"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Featured == "" {
		c.Featured = "latest"
	}
	if c.SitemapOrder == "" {
		c.SitemapOrder = "newest"
	}
	if c.ContactLimit == 0 {
		c.ContactLimit = 3
	}
	if c.ContactWindow == 0 {
		c.ContactWindow = 10 * time.Minute
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
}

// Validate reports configuration errors keyed by yaml field.
func (c SiteConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.URL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.ContactEndpoint, validation.By(absoluteURL)),
		validation.Field(&c.Featured, validation.In("latest", "earliest")),
		validation.Field(&c.SitemapOrder, validation.In("newest", "ascending")),
		validation.Field(&c.ContactLimit, validation.Min(1)),
	)
}

func absoluteURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

// LoadConfig reads a YAML site config, then a .env file next to it, then
// applies environment overrides. A missing config file is not an error; the
// result then comes from the environment and defaults alone.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	dir := "."
	if path != "" {
		dir = filepath.Dir(path)
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *SiteConfig) applyEnv() error {
	c.Name = EnvOr("SITE_NAME", c.Name)
	c.URL = EnvOr("SITE_URL", c.URL)
	c.Description = EnvOr("SITE_DESCRIPTION", c.Description)
	c.Author = EnvOr("SITE_AUTHOR", c.Author)
	c.ContactEndpoint = EnvOr("CONTACT_ENDPOINT", c.ContactEndpoint)
	c.SessionSecret = EnvOr("SESSION_SECRET", c.SessionSecret)
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		c.CookieSecure = b
	}
	return nil
}

// FeedConfig derives the feed metadata from the site settings.
func (c SiteConfig) FeedConfig(now func() time.Time) feed.Config {
	return feed.Config{
		SiteURL:     c.URL,
		Title:       c.Name,
		Description: c.Description,
		Image:       c.Logo,
		Favicon:     c.Favicon,
		Author:      feed.Author{Name: c.Author, Email: c.AuthorEmail, Link: c.AuthorLink},
		Generator:   "folio",
		Now:         now,
	}
}

// SnapshotOptions derives the aggregation settings.
func (c SiteConfig) SnapshotOptions() content.SnapshotOptions {
	return content.SnapshotOptions{
		Featured:           content.ParseFeaturedPolicy(c.Featured),
		IncludeUnpublished: c.ShowUnpublished,
	}
}

func (c SiteConfig) sitemapOrder() sitemap.Order {
	return sitemap.ParseOrder(c.SitemapOrder)
}

func (c SiteConfig) viewSite(search bool) views.SiteConfig {
	return views.SiteConfig{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
		AuthorLink:  c.AuthorLink,
		Search:      search,
		About:       c.hasAboutPage(),
	}
}

func (c SiteConfig) hasAboutPage() bool {
	_, err := os.Stat(filepath.Join(c.ContentDir, content.PagesDir, content.AboutPage+content.Extension))
	return err == nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir overrides the static asset directory.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithLogger sets the logger used by the loader, builder, server and watcher.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithRegistry registers build and HTTP metrics on reg instead of a private
// registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}

// WithClock replaces time.Now for feed timestamps and build durations.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithWatch makes Start watch the content directory and drop the cached
// snapshot on change.
func WithWatch() Option {
	return func(a *App) {
		a.watch = true
	}
}

// WithHTTPClient sets the client used to forward contact messages.
func WithHTTPClient(c HTTPDoer) Option {
	return func(a *App) {
		a.httpClient = c
	}
}
