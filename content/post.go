// Package content loads markdown posts from disk and aggregates them into
// the read-only snapshot consumed by pages, feeds and the sitemap.
package content

import (
	"math"
	"strings"
	"time"
)

// isoLayout matches JavaScript's Date.prototype.toISOString output.
const isoLayout = "2006-01-02T15:04:05.000Z"

// wordsPerMinute is the reading speed used for ReadingTime.
const wordsPerMinute = 200

// RawMeta is the front-matter block of a post as authored.
type RawMeta struct {
	Title       string
	Description string
	Tags        []string
	Image       string
	Date        time.Time
	Featured    *bool
	Published   *bool
}

// Meta is RawMeta with defaults resolved and derived fields computed.
type Meta struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image"`
	Date        string   `json:"date"` // ISO-8601, UTC
	ReadingTime int      `json:"readingTime"`
	Featured    bool     `json:"featured"`
	Published   bool     `json:"published"`

	Time time.Time `json:"-"`
}

// Post is a source post: metadata plus the markdown body.
type Post struct {
	Slug    string `json:"slug"`
	Meta    Meta   `json:"meta"`
	Content string `json:"content"`
}

// SourcePost names the markdown-bodied shape explicitly.
type SourcePost = Post

// RenderedPost carries render-ready HTML next to the source markdown.
type RenderedPost struct {
	Slug    string
	Meta    Meta
	HTML    string
	Content string
}

// Renderer turns markdown into HTML.
type Renderer interface {
	Render(markdown []byte) ([]byte, error)
}

// Render converts a source post into a rendered post. It does not modify p.
func Render(p Post, r Renderer) (RenderedPost, error) {
	out, err := r.Render([]byte(p.Content))
	if err != nil {
		return RenderedPost{}, err
	}
	return RenderedPost{
		Slug:    p.Slug,
		Meta:    p.Meta,
		HTML:    string(out),
		Content: p.Content,
	}, nil
}

// NewMeta resolves defaults on raw and derives the computed fields from body.
func NewMeta(raw RawMeta, body string) Meta {
	t := raw.Date.UTC()
	tags := make([]string, len(raw.Tags))
	copy(tags, raw.Tags)
	return Meta{
		Title:       raw.Title,
		Description: raw.Description,
		Tags:        tags,
		Image:       raw.Image,
		Date:        FormatISO(t),
		ReadingTime: ReadingTime(body),
		Featured:    raw.Featured != nil && *raw.Featured,
		Published:   raw.Published == nil || *raw.Published,
		Time:        t,
	}
}

// FormatISO formats t the way browsers print Date.toISOString.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ReadingTime estimates reading minutes for body, rounded to the nearest minute.
func ReadingTime(body string) int {
	words := len(strings.Fields(body))
	return int(math.Round(float64(words) / wordsPerMinute))
}

// DateOnly returns the calendar date portion of an ISO timestamp.
func DateOnly(iso string) string {
	if i := strings.IndexByte(iso, 'T'); i >= 0 {
		return iso[:i]
	}
	return iso
}
