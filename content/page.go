package content

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PagesDir is the subdirectory of the content dir holding standalone pages.
// Its files are never listed as posts.
const PagesDir = "pages"

// AboutPage is the name of the page served at /about.
const AboutPage = "about"

// Page is a standalone markdown page outside the post listing.
type Page struct {
	Slug        string
	Title       string
	Description string
	Image       string
	Content     string
}

// RenderedPage is a Page with its body converted to HTML.
type RenderedPage struct {
	Page
	HTML string
}

type pageEnvelope struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

func (e *pageEnvelope) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.Title, validation.Required),
	)
}

// LoadPage reads PagesDir/name+Extension. Only the title is required.
func (l *Loader) LoadPage(ctx context.Context, name string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return Page{}, ErrNotFound
	}
	path := filepath.Join(l.Dir, PagesDir, name+Extension)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Page{}, ErrNotFound
		}
		return Page{}, &IOError{Op: "read", Path: path, Err: err}
	}

	var env pageEnvelope
	body, err := frontmatter.MustParse(strings.NewReader(string(data)), &env, yamlFormat)
	if err != nil {
		return Page{}, &ParseError{Path: path, Err: err}
	}
	if err := env.Validate(); err != nil {
		return Page{}, &ParseError{Path: path, Fields: invalidFields(err), Err: err}
	}
	return Page{
		Slug:        name,
		Title:       env.Title,
		Description: env.Description,
		Image:       env.Image,
		Content:     string(body),
	}, nil
}

// RenderPage converts a page body to HTML.
func RenderPage(p Page, r Renderer) (RenderedPage, error) {
	out, err := r.Render([]byte(p.Content))
	if err != nil {
		return RenderedPage{}, err
	}
	return RenderedPage{Page: p, HTML: string(out)}, nil
}
