// Package feed serializes a post set into RSS 2.0, Atom 1.0 and JSON Feed 1.0
// documents.
package feed

import (
	"encoding/xml"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/feeds"

	"github.com/eringen/folio/content"
)

// Output paths relative to the build directory.
const (
	RSSPath  = "rss/feed.xml"
	AtomPath = "rss/atom.xml"
	JSONPath = "rss/feed.json"
	// AtomAliasPath mirrors AtomPath at the site root.
	AtomAliasPath = "atom.xml"
)

// imageWidth is the width of the lead image embedded in item content.
const imageWidth = 696

// Author identifies the site owner.
type Author struct {
	Name  string
	Email string
	Link  string
}

// Config holds the feed-level metadata. Generate never reads global state.
type Config struct {
	SiteURL     string
	Title       string
	Description string
	// Image defaults to {SiteURL}/logo.svg and Favicon to {SiteURL}/favicon.png.
	Image     string
	Favicon   string
	Author    Author
	Generator string
	// Now supplies the copyright year, and the updated time of a feed with no
	// posts. Defaults to time.Now.
	Now func() time.Time
}

func (c *Config) setDefaults() {
	if c.Image == "" {
		c.Image = content.JoinURL(c.SiteURL, "logo.svg")
	}
	if c.Favicon == "" {
		c.Favicon = content.JoinURL(c.SiteURL, "favicon.png")
	}
	if c.Generator == "" {
		c.Generator = "folio"
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Feeds holds the three serialized documents.
type Feeds struct {
	RSS2  string
	Atom1 string
	JSON1 string
}

// Generate builds the feeds for posts, which must be sorted ascending by
// date. Items are emitted newest first. The feed dates follow the newest
// post so unchanged content yields unchanged feeds.
func Generate(posts []content.Post, cfg Config) (Feeds, error) {
	cfg.setDefaults()
	now := cfg.Now().UTC()
	siteURL := content.JoinURL(cfg.SiteURL)

	var published time.Time
	updated := now
	if len(posts) > 0 {
		published = posts[len(posts)-1].Meta.Time.UTC()
		updated = published
	}

	author := &feeds.Author{Name: cfg.Author.Name, Email: cfg.Author.Email}
	f := &feeds.Feed{
		Title:       cfg.Title,
		Link:        &feeds.Link{Href: siteURL},
		Description: cfg.Description,
		Author:      author,
		Id:          siteURL,
		Updated:     updated,
		Created:     published,
		Copyright:   fmt.Sprintf("All rights reserved %d, %s", now.Year(), cfg.Author.Name),
		Image:       &feeds.Image{Url: cfg.Image, Title: cfg.Title, Link: siteURL},
	}

	latest := content.Latest(posts)
	f.Items = make([]*feeds.Item, 0, len(latest))
	for _, p := range latest {
		link := content.PostURL(cfg.SiteURL, p.Slug)
		body := itemContent(link, content.AbsURL(cfg.SiteURL, p.Meta.Image), p.Meta.Description)
		f.Items = append(f.Items, &feeds.Item{
			Title:       p.Meta.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Description: body,
			Content:     body,
			Author:      author,
			Created:     p.Meta.Time,
			Updated:     p.Meta.Time,
		})
	}

	var out Feeds
	var err error

	rss := (&feeds.Rss{Feed: f}).RssFeed()
	rss.Generator = cfg.Generator
	rssDoc := &rssDocument{
		Version:          "2.0",
		ContentNamespace: contentNS,
		AtomNamespace:    atomNS,
		Channel: rssChannel{
			RssFeed:  rss,
			SelfLink: atomSelfLink{Href: content.JoinURL(cfg.SiteURL, RSSPath), Rel: "self", Type: "application/rss+xml"},
		},
	}
	if out.RSS2, err = feeds.ToXML(rssDoc); err != nil {
		return Feeds{}, fmt.Errorf("render rss: %w", err)
	}

	atom := (&feeds.Atom{Feed: f}).AtomFeed()
	atom.Xmlns = atomNS
	atom.Icon = cfg.Favicon
	atom.Logo = cfg.Image
	atom.Link = nil
	atomDoc := &atomDocument{
		AtomFeed:  atom,
		Generator: atomGenerator{Value: cfg.Generator},
		Links: []*feeds.AtomLink{
			{Href: siteURL, Rel: "alternate", Type: "text/html"},
			{Href: content.JoinURL(cfg.SiteURL, AtomPath), Rel: "self", Type: "application/atom+xml"},
		},
	}
	if out.Atom1, err = feeds.ToXML(atomDoc); err != nil {
		return Feeds{}, fmt.Errorf("render atom: %w", err)
	}

	jf := (&feeds.JSON{Feed: f}).JSONFeed()
	jf.FeedUrl = content.JoinURL(cfg.SiteURL, JSONPath)
	jf.Icon = cfg.Image
	jf.Favicon = cfg.Favicon
	if jf.Author != nil {
		jf.Author.Url = cfg.Author.Link
	}
	if out.JSON1, err = jf.ToJSON(); err != nil {
		return Feeds{}, fmt.Errorf("render json feed: %w", err)
	}
	return out, nil
}

const (
	atomNS    = "http://www.w3.org/2005/Atom"
	contentNS = "http://purl.org/rss/1.0/modules/content/"
)

// rssDocument is the <rss> root with the atom namespace declared, so the
// channel can carry its own atom:link rel="self".
type rssDocument struct {
	XMLName          xml.Name   `xml:"rss"`
	Version          string     `xml:"version,attr"`
	ContentNamespace string     `xml:"xmlns:content,attr"`
	AtomNamespace    string     `xml:"xmlns:atom,attr"`
	Channel          rssChannel `xml:"channel"`
}

func (d *rssDocument) FeedXml() interface{} { return d }

type rssChannel struct {
	*feeds.RssFeed
	SelfLink atomSelfLink `xml:"atom:link"`
}

type atomSelfLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// atomDocument adds the generator and the self link the library's AtomFeed
// lacks. AtomFeed.Link must be nil or a third link is written.
type atomDocument struct {
	XMLName xml.Name `xml:"feed"`
	*feeds.AtomFeed
	Generator atomGenerator     `xml:"generator"`
	Links     []*feeds.AtomLink `xml:"link"`
}

func (d *atomDocument) FeedXml() interface{} { return d }

type atomGenerator struct {
	Value string `xml:",chardata"`
}

func itemContent(link, image, description string) string {
	return fmt.Sprintf(`<p><a href="%s"><img src="%s" width="%d"></a></p><p>%s</p>`,
		html.EscapeString(link), html.EscapeString(image), imageWidth, html.EscapeString(description))
}

// Write stores the feeds under dir, creating the rss directory. The Atom
// document is also written to AtomAliasPath.
func (f Feeds) Write(dir string) error {
	files := []struct {
		path string
		data string
	}{
		{RSSPath, f.RSS2},
		{AtomPath, f.Atom1},
		{JSONPath, f.JSON1},
		{AtomAliasPath, f.Atom1},
	}
	for _, file := range files {
		dst := filepath.Join(dir, filepath.FromSlash(file.path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create feed dir: %w", err)
		}
		if err := os.WriteFile(dst, []byte(file.data), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", file.path, err)
		}
	}
	return nil
}
