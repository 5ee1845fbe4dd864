// Package views holds the default page components. Pages are html/template
// files embedded in the binary and exposed as templ components, so a site can
// swap any of them for its own templ code.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/folio/content"
)

//go:embed templates/*.html
var templateFS embed.FS

const relatedLimit = 3

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"home", "post", "tag", "about", "contact", "search", "notfound", "servererror"} {
		pages[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
}

type pageData struct {
	Site   SiteConfig
	Meta   PageMeta
	JSONLD template.JS
	Body   any
}

func page(name string, data pageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := pages[name].ExecuteTemplate(w, "layout", data); err != nil {
			return fmt.Errorf("render %s page: %w", name, err)
		}
		return nil
	})
}

func websiteMeta(site SiteConfig, title, path string) PageMeta {
	return PageMeta{
		Title:       title,
		Description: site.Description,
		URL:         buildURL(site.URL, path),
		OGType:      "website",
	}
}

// Home renders the index page.
func Home(site SiteConfig, data HomeData) templ.Component {
	meta := websiteMeta(site, site.Name, "")
	meta.URL = buildURL(site.URL)
	return page("home", pageData{Site: site, Meta: meta, JSONLD: template.JS(WebsiteJsonLD(site)), Body: data})
}

// Post renders a single post.
func Post(site SiteConfig, data PostData) templ.Component {
	p := content.Post{Slug: data.Post.Slug, Meta: data.Post.Meta, Content: data.Post.Content}
	meta := PageMeta{
		Title:       data.Post.Meta.Title + " | " + site.Name,
		Description: data.Post.Meta.Description,
		URL:         content.PostURL(site.URL, data.Post.Slug),
		OGType:      "article",
		Image:       content.AbsURL(site.URL, data.Post.Meta.Image),
	}
	return page("post", pageData{Site: site, Meta: meta, JSONLD: template.JS(BlogPostingJsonLD(site, p)), Body: data})
}

// Tag renders the listing for one tag.
func Tag(site SiteConfig, data TagData) templ.Component {
	meta := websiteMeta(site, "Posts tagged "+data.Tag.Label+" | "+site.Name, "tag/"+data.Tag.Slug)
	return page("tag", pageData{Site: site, Meta: meta, JSONLD: template.JS(WebsiteJsonLD(site)), Body: data})
}

// About renders the about page.
func About(site SiteConfig, data AboutData) templ.Component {
	meta := websiteMeta(site, data.Page.Title+" | "+site.Name, "about")
	if data.Page.Description != "" {
		meta.Description = data.Page.Description
	}
	meta.Image = content.AbsURL(site.URL, data.Page.Image)
	return page("about", pageData{Site: site, Meta: meta, JSONLD: template.JS(WebsiteJsonLD(site)), Body: data})
}

// Contact renders the contact form with any inline outcome message.
func Contact(site SiteConfig, data ContactData) templ.Component {
	meta := websiteMeta(site, "Contact | "+site.Name, "contact")
	return page("contact", pageData{Site: site, Meta: meta, JSONLD: template.JS(WebsiteJsonLD(site)), Body: data})
}

// Search renders search results.
func Search(site SiteConfig, data SearchData) templ.Component {
	meta := websiteMeta(site, "Search | "+site.Name, "search")
	return page("search", pageData{Site: site, Meta: meta, JSONLD: template.JS(WebsiteJsonLD(site)), Body: data})
}

// NotFound renders the 404 page.
func NotFound(site SiteConfig) templ.Component {
	meta := websiteMeta(site, "Not found | "+site.Name, "")
	return page("notfound", pageData{Site: site, Meta: meta, JSONLD: template.JS(WebsiteJsonLD(site))})
}

// ServerError renders the 500 page.
func ServerError(site SiteConfig) templ.Component {
	meta := websiteMeta(site, "Error | "+site.Name, "")
	return page("servererror", pageData{Site: site, Meta: meta, JSONLD: template.JS(WebsiteJsonLD(site))})
}

// NewPostData assembles PostData for rendered from the listed posts.
func NewPostData(rendered content.RenderedPost, listed []content.Post, tags []content.TagCount) PostData {
	src := content.Post{Slug: rendered.Slug, Meta: rendered.Meta}
	return PostData{
		Post:    rendered,
		Related: RelatedPosts(src, listed, relatedLimit),
		Tags:    tags,
	}
}
