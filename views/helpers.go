package views

import (
	"encoding/json"
	"html/template"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/folio/content"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// RelatedPosts returns posts that share at least one tag with current, newest
// first, capped at limit.
func RelatedPosts(current content.Post, posts []content.Post, limit int) []content.Post {
	tagSet := make(map[string]struct{})
	for _, t := range current.Meta.Tags {
		if s := content.Slugify(t); s != "" {
			tagSet[s] = struct{}{}
		}
	}
	var related []content.Post
	for _, p := range content.Latest(posts) {
		if p.Slug == current.Slug {
			continue
		}
		for _, t := range p.Meta.Tags {
			if _, ok := tagSet[content.Slugify(t)]; ok {
				related = append(related, p)
				break
			}
		}
		if limit > 0 && len(related) == limit {
			break
		}
	}
	return related
}

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	base := "inline-flex items-center rounded border border-ink dark:border-white/30 bg-stone-100 dark:bg-neutral-700 px-2.5 py-1 text-[11px] font-semibold uppercase tracking-[0.12em] hover:-translate-y-0.5 hover:shadow-sm transition"
	if active {
		base += " bg-ink dark:bg-white text-white dark:text-ink"
	}
	return base
}

// TagURL is the site-relative address of a tag page.
func TagURL(label string) string {
	return "/tag/" + content.Slugify(label)
}

// ShareLink is one "share this post" target.
type ShareLink struct {
	Name string
	URL  string
}

// ShareLinks builds share targets for a post URL.
func ShareLinks(postURL, title string) []ShareLink {
	u := url.QueryEscape(postURL)
	t := url.QueryEscape(title)
	return []ShareLink{
		{Name: "X", URL: "https://twitter.com/intent/tweet?url=" + u + "&text=" + t},
		{Name: "LinkedIn", URL: "https://www.linkedin.com/sharing/share-offsite/?url=" + u},
		{Name: "Facebook", URL: "https://www.facebook.com/sharer/sharer.php?u=" + u},
	}
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      buildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(cfg SiteConfig, post content.Post) string {
	postURL := content.PostURL(cfg.URL, post.Slug)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Meta.Title,
		"description":   post.Meta.Description,
		"datePublished": post.Meta.Date,
		"url":           postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if img := content.AbsURL(cfg.URL, post.Meta.Image); img != "" {
		data["image"] = img
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if len(post.Meta.Tags) > 0 {
		data["keywords"] = strings.Join(post.Meta.Tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

var funcs = template.FuncMap{
	"dateOnly":   content.DateOnly,
	"tagURL":     TagURL,
	"tagClass":   TagClass,
	"pathEscape": PathEscape,
	"shareLinks": ShareLinks,
	"safeHTML":   func(s string) template.HTML { return template.HTML(s) },
	"rest": func(posts []content.Post) []content.Post {
		if len(posts) < 2 {
			return nil
		}
		return posts[1:]
	},
}
