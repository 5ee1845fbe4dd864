// Package sitemap renders the sitemaps.org urlset for a post set.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eringen/folio/content"
)

// FileName is the sitemap path relative to the build directory.
const FileName = "sitemap.xml"

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Order controls the order of the post entries.
type Order int

const (
	// NewestFirst lists posts by descending date.
	NewestFirst Order = iota
	// Ascending keeps the input order, oldest first.
	Ascending
)

// ParseOrder maps a config value to an Order.
func ParseOrder(s string) Order {
	if s == "ascending" {
		return Ascending
	}
	return NewestFirst
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []urlRef `xml:"url"`
}

type urlRef struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Generate returns the sitemap document for posts, which must be sorted
// ascending by date. The site root comes first, followed by one entry per
// post.
func Generate(posts []content.Post, siteURL string, order Order) (string, error) {
	entries := posts
	if order == NewestFirst {
		entries = content.Latest(posts)
	}

	root := urlRef{Loc: content.JoinURL(siteURL)}
	if len(posts) > 0 {
		root.LastMod = content.DateOnly(posts[len(posts)-1].Meta.Date)
	}
	urls := make([]urlRef, 0, len(posts)+1)
	urls = append(urls, root)
	for _, p := range entries {
		urls = append(urls, urlRef{
			Loc:     content.PostURL(siteURL, p.Slug),
			LastMod: content.DateOnly(p.Meta.Date),
		})
	}

	out, err := xml.MarshalIndent(urlSet{XMLNS: xmlns, URLs: urls}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode sitemap: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}

// Write stores doc as sitemap.xml under dir.
func Write(dir, doc string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}
	return nil
}
