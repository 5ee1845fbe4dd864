package folio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/eringen/folio/content"
)

const (
	thumbWidth  = 696
	jpegQuality = 80
	thumbsDir   = "thumbs"
)

// scaleImage decodes src, shrinks it to at most maxWidth wide keeping the
// aspect ratio, and encodes it as JPEG.
func scaleImage(src io.Reader, maxWidth int) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxWidth {
		newH := h * maxWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// localImagePath maps a site-relative image reference to a file under
// staticDir. Remote images and paths escaping staticDir are rejected.
func localImagePath(staticDir, ref string) (string, bool) {
	if !strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "//") {
		return "", false
	}
	clean := path.Clean(ref)
	clean = strings.TrimPrefix(clean, "/public")
	return filepath.Join(staticDir, filepath.FromSlash(clean)), true
}

// GenerateThumbnails writes a JPEG thumbnail for every post whose image is a
// site-relative file under staticDir. It returns slug to thumbnail URL path.
// Posts with remote or missing images are skipped.
func GenerateThumbnails(posts []content.Post, staticDir, outDir string, logger *slog.Logger) (map[string]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	thumbs := make(map[string]string)
	dir := filepath.Join(outDir, thumbsDir)
	for _, p := range posts {
		src, ok := localImagePath(staticDir, p.Meta.Image)
		if !ok {
			continue
		}
		f, err := os.Open(src)
		if err != nil {
			logger.Debug("thumbnail source unavailable", "slug", p.Slug, "image", p.Meta.Image, "error", err)
			continue
		}
		data, err := scaleImage(f, thumbWidth)
		f.Close()
		if err != nil {
			logger.Warn("thumbnail skipped", "slug", p.Slug, "error", err)
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create thumbs dir: %w", err)
		}
		name := p.Slug + ".jpg"
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return nil, fmt.Errorf("write thumbnail: %w", err)
		}
		thumbs[p.Slug] = "/" + thumbsDir + "/" + name
	}
	return thumbs, nil
}
