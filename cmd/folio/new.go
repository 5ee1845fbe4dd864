package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/scaffold"
)

// NewCmd scaffolds a new site directory.
type NewCmd struct {
	Name string `arg:"" help:"Directory name of the new site"`
}

func (n *NewCmd) Run(g *Global) error {
	dir := filepath.Clean(n.Name)
	name := filepath.Base(dir)
	created, err := scaffold.Write(dir, scaffold.Data{
		ProjectName: name,
		SiteName:    scaffold.Title(name),
		Date:        time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	for _, path := range created {
		g.Logger.Debug("created", "path", path)
	}

	fmt.Printf("Created %s with %d files.\n\n", dir, len(created))
	fmt.Println("Next steps:")
	fmt.Printf("  cd %s\n", dir)
	fmt.Println("  folio serve --watch")
	fmt.Println("  folio build")
	return nil
}

// PostCmd writes a new markdown post with front matter.
type PostCmd struct {
	Title       string   `arg:"" help:"Post title"`
	Tags        []string `short:"t" help:"Comma separated tags"`
	Description string   `short:"d" help:"Short description"`
	Image       string   `short:"i" help:"Cover image path (defaults to /public/images/{slug}.png)"`
	Date        string   `help:"Publication date (defaults to now)"`
	Featured    bool     `help:"Mark the post as featured"`
	Draft       bool     `help:"Mark the post as unpublished"`
}

func (p *PostCmd) Run(g *Global, root *CLI) error {
	cfg, err := folio.LoadConfig(root.Config)
	if err != nil {
		return err
	}
	path, err := p.write(cfg.ContentDir, time.Now())
	if err != nil {
		return err
	}
	g.Logger.Info("post created", "path", path)
	fmt.Println(path)
	return nil
}

// write creates {dir}/{slug}.md and returns its path. An existing post is
// never overwritten.
func (p *PostCmd) write(dir string, now time.Time) (string, error) {
	title := strings.TrimSpace(p.Title)
	slug := content.Slugify(title)
	if slug == "" {
		return "", errors.New("title must contain letters or digits")
	}

	date := now
	if p.Date != "" {
		d, err := dateparse.ParseIn(p.Date, time.UTC)
		if err != nil {
			return "", fmt.Errorf("parse date %q: %w", p.Date, err)
		}
		date = d
	}

	meta := content.RawMeta{
		Title:       title,
		Description: p.Description,
		Tags:        p.Tags,
		Image:       p.Image,
		Date:        date,
	}
	// The loader requires both fields, so fill placeholders the author can edit.
	if meta.Description == "" {
		meta.Description = title
	}
	if meta.Image == "" {
		meta.Image = "/public/images/" + slug + ".png"
	}
	if p.Featured {
		meta.Featured = &p.Featured
	}
	if p.Draft {
		published := false
		meta.Published = &published
	}

	doc, err := content.FormatFrontMatter(meta, "Write your post here.\n")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create content dir: %w", err)
	}
	path := filepath.Join(dir, slug+content.Extension)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("post %q already exists", path)
	}
	if err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}
	if _, err := f.WriteString(doc); err != nil {
		f.Close()
		return "", fmt.Errorf("write post: %w", err)
	}
	return path, f.Close()
}
