package content

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Extension is the file extension recognised as a post.
const Extension = ".md"

// Loader reads posts from a content directory.
type Loader struct {
	Dir    string
	Logger *slog.Logger

	// Concurrency bounds parallel file reads in LoadAllPosts.
	// Zero means runtime.NumCPU()*4.
	Concurrency int

	// SkipInvalid makes LoadAllPosts log and skip files whose front matter
	// fails to parse instead of failing the whole batch. IO errors still abort.
	SkipInvalid bool
}

// NewLoader returns a Loader for dir using the default logger.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir, Logger: slog.Default()}
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

// ListPostSlugs returns the slugs of every post file in the directory, in
// filesystem enumeration order.
func (l *Loader) ListPostSlugs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, &IOError{Op: "read dir", Path: l.Dir, Err: err}
	}
	slugs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		slug := strings.TrimSuffix(e.Name(), Extension)
		if slug == "" {
			continue
		}
		slugs = append(slugs, slug)
	}
	return slugs, nil
}

// LoadPost reads and parses the post stored in slug+Extension.
func (l *Loader) LoadPost(ctx context.Context, slug string) (Post, error) {
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}
	if slug == "" || strings.ContainsAny(slug, `/\`) || slug == "." || slug == ".." {
		return Post{}, ErrNotFound
	}
	path := filepath.Join(l.Dir, slug+Extension)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Post{}, ErrNotFound
		}
		return Post{}, &IOError{Op: "read", Path: path, Err: err}
	}

	doc, err := ParseFrontMatter(string(data))
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return Post{}, err
	}

	return Post{
		Slug:    slug,
		Meta:    NewMeta(doc.Attributes, doc.Body),
		Content: doc.Body,
	}, nil
}

// LoadAllPosts loads every post in the directory concurrently and returns
// them sorted by date ascending. The first error aborts the batch unless
// SkipInvalid is set and the error is a *ParseError.
func (l *Loader) LoadAllPosts(ctx context.Context) ([]Post, error) {
	slugs, err := l.ListPostSlugs(ctx)
	if err != nil {
		return nil, err
	}

	limit := l.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU() * 4
	}

	var (
		mu    sync.Mutex
		posts = make([]Post, 0, len(slugs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, slug := range slugs {
		g.Go(func() error {
			p, err := l.LoadPost(gctx, slug)
			if err != nil {
				var perr *ParseError
				if l.SkipInvalid && errors.As(err, &perr) {
					l.logger().Warn("skipping invalid post", "slug", slug, "error", err)
					return nil
				}
				return err
			}
			mu.Lock()
			posts = append(posts, p)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortByDate(posts)
	l.logger().Debug("loaded posts", "dir", l.Dir, "count", len(posts))
	return posts, nil
}

// SortByDate orders posts by date ascending, breaking ties by slug.
func SortByDate(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].Meta.Time, posts[j].Meta.Time
		if a.Equal(b) {
			return posts[i].Slug < posts[j].Slug
		}
		return a.Before(b)
	})
}
