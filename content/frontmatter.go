package content

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/araddon/dateparse"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Document is a parsed content file: front-matter attributes plus body text.
type Document struct {
	Attributes RawMeta
	Body       string
}

type frontMatterEnvelope struct {
	Title       string    `yaml:"title" json:"title"`
	Description string    `yaml:"description" json:"description"`
	Tags        *[]string `yaml:"tags" json:"tags"`
	Image       string    `yaml:"image" json:"image"`
	Date        string    `yaml:"date" json:"date"`
	Featured    *bool     `yaml:"featured" json:"featured"`
	Published   *bool     `yaml:"published" json:"published"`
}

func (e *frontMatterEnvelope) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.Title, validation.Required),
		validation.Field(&e.Description, validation.Required),
		validation.Field(&e.Tags, validation.NotNil),
		validation.Field(&e.Image, validation.Required),
		validation.Field(&e.Date, validation.Required),
	)
}

// ParseFrontMatter splits raw into its "---" fenced YAML block and body and
// decodes the block into RawMeta. A missing block, a missing required field,
// a non-sequence tags value or an unparseable date yield a *ParseError.
func ParseFrontMatter(raw string) (Document, error) {
	var env frontMatterEnvelope
	body, err := frontmatter.MustParse(strings.NewReader(raw), &env, yamlFormat)
	if err != nil {
		return Document{}, &ParseError{Fields: typeErrorFields(err), Err: err}
	}

	if err := env.Validate(); err != nil {
		return Document{}, &ParseError{Fields: invalidFields(err), Err: err}
	}

	date, err := dateparse.ParseStrict(strings.TrimSpace(env.Date))
	if err != nil {
		return Document{}, &ParseError{Fields: []string{"date"}, Err: err}
	}

	return Document{
		Attributes: RawMeta{
			Title:       env.Title,
			Description: env.Description,
			Tags:        append([]string{}, (*env.Tags)...),
			Image:       env.Image,
			Date:        date.UTC(),
			Featured:    env.Featured,
			Published:   env.Published,
		},
		Body: string(body),
	}, nil
}

// yamlFormat decodes the fenced block with yaml.v3 so type mismatches
// surface as *yaml.TypeError.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// typeErrorFields names the envelope fields a YAML type mismatch hit. Tags
// is the only sequence field, so a []string mismatch is always tags.
func typeErrorFields(err error) []string {
	var terr *yaml.TypeError
	if !errors.As(err, &terr) {
		return nil
	}
	for _, msg := range terr.Errors {
		if strings.Contains(msg, "[]string") {
			return []string{"tags"}
		}
	}
	return nil
}

func invalidFields(err error) []string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for k := range verrs {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

type frontMatterOut struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Image       string   `yaml:"image"`
	Date        string   `yaml:"date"`
	Featured    *bool    `yaml:"featured,omitempty"`
	Published   *bool    `yaml:"published,omitempty"`
}

// FormatFrontMatter serializes meta as a "---" fenced YAML block followed by
// body. Keys are written in a fixed order; the date is written as RFC 3339.
func FormatFrontMatter(meta RawMeta, body string) (string, error) {
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	out := frontMatterOut{
		Title:       meta.Title,
		Description: meta.Description,
		Tags:        tags,
		Image:       meta.Image,
		Date:        meta.Date.UTC().Format(time.RFC3339),
		Featured:    meta.Featured,
		Published:   meta.Published,
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		_ = enc.Close()
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}

	var doc strings.Builder
	doc.WriteString("---\n")
	doc.Write(buf.Bytes())
	doc.WriteString("---\n")
	doc.WriteString(body)
	return doc.String(), nil
}
