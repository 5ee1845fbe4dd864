package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/folio/content"
)

// SiteConfig holds the site-wide settings every page needs. Handlers and the
// static builder pass it to templates so nothing is hardcoded.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
	AuthorLink  string
	// Search enables the search box; only the preview server answers it.
	Search bool
	// About adds the about page to the navigation.
	About bool
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// HomeData is the index page: hero, the rest of the posts, and the sidebar.
type HomeData struct {
	Latest   []content.Post
	Featured content.Post
	HasPosts bool
	Tags     []content.TagCount
}

// PostData is a single rendered post with its related posts.
type PostData struct {
	Post    content.RenderedPost
	Related []content.Post
	Tags    []content.TagCount
}

// TagData is the listing for one tag.
type TagData struct {
	Tag   content.Tag
	Posts []content.Post
	Tags  []content.TagCount
}

// AboutData is the about page with the same sidebar as the home page.
type AboutData struct {
	Page     content.RenderedPage
	Featured content.Post
	HasPosts bool
	Tags     []content.TagCount
}

// ContactData drives the contact form. Action is where the form posts; the
// static build points it at the form endpoint directly.
type ContactData struct {
	Action    string
	CSRFToken string
	Email     string
	Message   string
	Success   string
	Error     string
}

// SearchData is a query and its ranked results.
type SearchData struct {
	Query   string
	Results []content.Post
}

// Funcs holds the components the server and builder call when rendering
// pages. Sites replace any of them to own their templates.
type Funcs struct {
	Home        func(site SiteConfig, data HomeData) templ.Component
	Post        func(site SiteConfig, data PostData) templ.Component
	Tag         func(site SiteConfig, data TagData) templ.Component
	About       func(site SiteConfig, data AboutData) templ.Component
	Contact     func(site SiteConfig, data ContactData) templ.Component
	Search      func(site SiteConfig, data SearchData) templ.Component
	NotFound    func(site SiteConfig) templ.Component
	ServerError func(site SiteConfig) templ.Component
}

// Default returns the built-in components.
func Default() Funcs {
	return Funcs{
		Home:        Home,
		Post:        Post,
		Tag:         Tag,
		About:       About,
		Contact:     Contact,
		Search:      Search,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}
