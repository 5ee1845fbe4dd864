// Package markdown converts post bodies to HTML with goldmark and exposes the
// result as a templ component.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	goldhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const linkClass = "underline decoration-2 underline-offset-4"

// Renderer renders markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md       goldmark.Markdown
	siteHost string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSiteURL marks links to the site's own host as internal so they open in
// the same tab.
func WithSiteURL(siteURL string) Option {
	return func(r *Renderer) {
		if u, err := url.Parse(siteURL); err == nil {
			r.siteHost = u.Host
		}
	}
}

// New returns a Renderer with GFM, heading ids and raw HTML passthrough.
// Post bodies are author-controlled, so raw HTML is trusted.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, o := range opts {
		o(r)
	}
	r.md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(&attrTransformer{siteHost: r.siteHost}, 100)),
		),
		goldmark.WithRendererOptions(
			goldhtml.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{}, 100)),
		),
	)
	return r
}

// Render converts markdown source to HTML.
func (r *Renderer) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderString is Render for strings.
func (r *Renderer) RenderString(src string) (string, error) {
	out, err := r.Render([]byte(src))
	return string(out), err
}

// Markdown returns a templ.Component that writes already rendered HTML.
func Markdown(rendered string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, rendered)
		return err
	})
}

// attrTransformer decorates links and images the way the site stylesheet
// expects: styled links, external links in a new tab, the first image eager
// and the rest lazy.
type attrTransformer struct {
	siteHost string
}

func (t *attrTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	images := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Link:
			v.SetAttributeString("class", []byte(linkClass))
			if t.external(string(v.Destination)) {
				v.SetAttributeString("target", []byte("_blank"))
				v.SetAttributeString("rel", []byte("noopener noreferrer"))
			}
		case *ast.Image:
			images++
			loading := "lazy"
			if images == 1 {
				loading = "eager"
			}
			v.SetAttributeString("loading", []byte(loading))
			v.SetAttributeString("decoding", []byte("async"))
		}
		return ast.WalkContinue, nil
	})
}

func (t *attrTransformer) external(dest string) bool {
	u, err := url.Parse(dest)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}
	return t.siteHost == "" || !strings.EqualFold(u.Host, t.siteHost)
}

// codeBlockRenderer wraps fenced code with a language badge.
type codeBlockRenderer struct{}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
}

func (r *codeBlockRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := html.EscapeString(string(n.Language(source)))
	if lang != "" {
		fmt.Fprintf(w, `<div class="code-block-wrapper"><span class="code-lang code-lang-%s">%s</span>`, lang, lang)
		fmt.Fprintf(w, `<pre class="code-block"><code class="language-%s">`, lang)
	} else {
		_, _ = w.WriteString(`<pre class="code-block"><code>`)
	}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
	_, _ = w.WriteString("</code></pre>")
	if lang != "" {
		_, _ = w.WriteString("</div>")
	}
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}
