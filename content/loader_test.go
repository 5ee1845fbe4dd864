package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePost(t *testing.T, dir, slug, date string, tags []string, body string) {
	t.Helper()
	doc := fmt.Sprintf("---\ntitle: %s\ndescription: About %s\ntags: [%s]\nimage: /images/%s.png\ndate: %s\n---\n%s",
		slug, slug, strings.Join(tags, ", "), slug, date, body)
	require.NoError(t, os.WriteFile(filepath.Join(dir, slug+Extension), []byte(doc), 0o644))
}

func TestListPostSlugs_OnlyMarkdownFiles(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "first", "2021-01-01", []string{"go"}, "hello")
	writePost(t, dir, "second", "2021-02-01", []string{"go"}, "hello")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "drafts.md"), 0o755))

	slugs, err := NewLoader(dir).ListPostSlugs(context.Background())
	require.NoError(t, err)
	sort.Strings(slugs)
	require.Equal(t, []string{"first", "second"}, slugs)
}

func TestListPostSlugs_BareExtensionFileIgnored(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "first", "2021-01-01", []string{"go"}, "hello")
	require.NoError(t, os.WriteFile(filepath.Join(dir, Extension), []byte("---\ntitle: x\n---\n"), 0o644))

	l := NewLoader(dir)
	slugs, err := l.ListPostSlugs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"first"}, slugs)

	posts, err := l.LoadAllPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
}

func TestListPostSlugs_MissingDir_ReturnsIOError(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope")).ListPostSlugs(context.Background())

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
}

func TestLoadPost_ComputesDerivedFields(t *testing.T) {
	dir := t.TempDir()
	body := strings.Repeat("word ", 450)
	writePost(t, dir, "long-read", "2021-05-01", []string{"TypeScript"}, body)

	p, err := NewLoader(dir).LoadPost(context.Background(), "long-read")
	require.NoError(t, err)
	require.Equal(t, "long-read", p.Slug)
	require.Equal(t, "2021-05-01T00:00:00.000Z", p.Meta.Date)
	require.Equal(t, 2, p.Meta.ReadingTime)
	require.True(t, p.Meta.Published)
	require.False(t, p.Meta.Featured)
	require.Equal(t, []string{"TypeScript"}, p.Meta.Tags)
}

func TestLoadPost_UnknownSlug_ReturnsErrNotFound(t *testing.T) {
	dir := t.TempDir()
	for _, slug := range []string{"missing", "../etc/passwd", ""} {
		_, err := NewLoader(dir).LoadPost(context.Background(), slug)
		require.ErrorIs(t, err, ErrNotFound, "slug %q", slug)
	}
}

func TestLoadPost_InvalidFrontMatter_ReturnsParseErrorWithPath(t *testing.T) {
	dir := t.TempDir()
	raw := "---\ndescription: d\ntags: [a]\nimage: /i.png\ndate: 2021-01-01\n---\nbody\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.md"), []byte(raw), 0o644))

	_, err := NewLoader(dir).LoadPost(context.Background(), "broken")

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, filepath.Join(dir, "broken.md"), perr.Path)
}

func TestLoadAllPosts_SortsByDateAscending(t *testing.T) {
	dir := t.TempDir()
	// File names deliberately sort opposite to dates.
	writePost(t, dir, "a-newest", "2023-03-01", []string{"go"}, "x")
	writePost(t, dir, "b-middle", "2022-06-15", []string{"go"}, "x")
	writePost(t, dir, "c-oldest", "2020-01-10", []string{"go"}, "x")
	writePost(t, dir, "d-middle-too", "2022-06-15", []string{"go"}, "x")

	posts, err := NewLoader(dir).LoadAllPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 4)

	var got []string
	for i, p := range posts {
		got = append(got, p.Slug)
		if i > 0 {
			require.False(t, p.Meta.Time.Before(posts[i-1].Meta.Time))
		}
	}
	require.Equal(t, []string{"c-oldest", "b-middle", "d-middle-too", "a-newest"}, got)
}

func TestLoadAllPosts_OneInvalidFile_FailsBatch(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "good", "2021-01-01", []string{"go"}, "x")
	raw := "---\ndescription: no title\ntags: [a]\nimage: /i.png\ndate: 2021-01-01\n---\nbody\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.md"), []byte(raw), 0o644))

	posts, err := NewLoader(dir).LoadAllPosts(context.Background())
	require.Nil(t, posts)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Contains(t, perr.Fields, "title")
}

func TestLoadAllPosts_SkipInvalid_KeepsGoodPosts(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "good", "2021-01-01", []string{"go"}, "x")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.md"), []byte("no front matter"), 0o644))

	l := NewLoader(dir)
	l.SkipInvalid = true
	posts, err := l.LoadAllPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, "good", posts[0].Slug)
}

func TestLoadAllPosts_EmptyDir(t *testing.T) {
	posts, err := NewLoader(t.TempDir()).LoadAllPosts(context.Background())
	require.NoError(t, err)
	require.Empty(t, posts)
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 0},
		{99, 0},
		{100, 1},
		{299, 1},
		{300, 2},
		{1000, 5},
	}
	for _, tt := range tests {
		got := ReadingTime(strings.Repeat("w ", tt.words))
		if got != tt.want {
			t.Errorf("ReadingTime(%d words) = %d, want %d", tt.words, got, tt.want)
		}
	}
}
