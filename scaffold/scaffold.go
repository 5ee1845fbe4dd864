// Package scaffold writes the starter files for a new folio site.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

const root = "templates"

// Data holds the template variables passed to every scaffold template.
type Data struct {
	ProjectName string
	SiteName    string
	Date        string // RFC 3339 date of the sample post
}

// Write renders the templates into dir and returns the created paths. It
// refuses to write into an existing directory.
func Write(dir string, data Data) ([]string, error) {
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("directory %q already exists", dir)
	}

	var created []string
	err := fs.WalkDir(Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		outPath := strings.TrimSuffix(filepath.Join(dir, rel), ".tmpl")
		// Embedded dotfiles are awkward to ship, so .env.example is stored as dotenv.
		if filepath.Base(outPath) == "dotenv" {
			outPath = filepath.Join(filepath.Dir(outPath), ".env.example")
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		raw, err := Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(raw))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()

		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}
		created = append(created, outPath)
		return nil
	})
	return created, err
}

// Title converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func Title(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
