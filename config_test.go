package folio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/sitemap"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, `
name: My Blog
url: https://blog.example.com
author: Jane
featured: earliest
sitemap_order: ascending
contact_endpoint: https://forms.example.net/f/abc
contact_window: 30m
show_unpublished: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "My Blog", cfg.Name)
	require.Equal(t, "https://blog.example.com", cfg.URL)
	require.Equal(t, 30*time.Minute, cfg.ContactWindow)
	require.True(t, cfg.ShowUnpublished)
	require.Equal(t, content.FeaturedEarliest, cfg.SnapshotOptions().Featured)
	require.True(t, cfg.SnapshotOptions().IncludeUnpublished)
	require.Equal(t, sitemap.Ascending, cfg.sitemapOrder())
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "Blog", cfg.Name)
	require.Equal(t, "http://localhost:3000", cfg.URL)
	require.Equal(t, "content", cfg.ContentDir)
	require.Equal(t, "public", cfg.StaticDir)
	require.Equal(t, "dist", cfg.OutputDir)
	require.Equal(t, ":3000", cfg.Addr)
	require.Equal(t, 3, cfg.ContactLimit)
	require.Equal(t, 10*time.Minute, cfg.ContactWindow)
	require.Equal(t, 5*time.Minute, cfg.CacheTTL)
	require.Equal(t, content.FeaturedLatest, cfg.SnapshotOptions().Featured)
	require.Equal(t, sitemap.NewestFirst, cfg.sitemapOrder())
}

func TestLoadConfig_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "name: From YAML\nurl: https://yaml.example.com\n")
	t.Setenv("SITE_URL", "https://env.example.com")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "From YAML", cfg.Name)
	require.Equal(t, "https://env.example.com", cfg.URL)
	require.True(t, cfg.CookieSecure)
}

func TestLoadConfig_DotEnvNextToConfig(t *testing.T) {
	path := writeConfig(t, "url: https://blog.example.com\n")
	dotenv := filepath.Join(filepath.Dir(path), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("SESSION_SECRET=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SESSION_SECRET") })

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "from-dotenv", cfg.SessionSecret)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"relative url", "url: /blog\n"},
		{"bad featured", "featured: random\n"},
		{"bad sitemap order", "sitemap_order: oldest\n"},
		{"bad endpoint", "contact_endpoint: ftp://example.com\n"},
		{"negative limit", "contact_limit: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "name: [\n"))
	require.ErrorContains(t, err, "parse config")
}

func TestLoadConfig_BadCookieSecure(t *testing.T) {
	t.Setenv("COOKIE_SECURE", "maybe")
	_, err := LoadConfig(writeConfig(t, ""))
	require.ErrorContains(t, err, "COOKIE_SECURE")
}

func TestFeedConfig(t *testing.T) {
	cfg := SiteConfig{Name: "Blog", URL: "https://example.com", Author: "Jane", AuthorEmail: "jane@example.com"}
	fc := cfg.FeedConfig(func() time.Time { return testNow })
	require.Equal(t, "https://example.com", fc.SiteURL)
	require.Equal(t, "Blog", fc.Title)
	require.Equal(t, "Jane", fc.Author.Name)
	require.Equal(t, "jane@example.com", fc.Author.Email)
	require.Equal(t, testNow, fc.Now())
}

func TestEnvOr(t *testing.T) {
	t.Setenv("FOLIO_TEST_VALUE", "set")
	require.Equal(t, "set", EnvOr("FOLIO_TEST_VALUE", "fallback"))
	require.Equal(t, "fallback", EnvOr("FOLIO_TEST_UNSET", "fallback"))
}
