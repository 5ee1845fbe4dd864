package content

import "log/slog"

// SnapshotOptions controls how a Snapshot is assembled.
type SnapshotOptions struct {
	Featured           FeaturedPolicy
	IncludeUnpublished bool
	// Logger receives tag label collisions. Nil uses slog.Default().
	Logger *slog.Logger
}

// Snapshot is the read-only view of a build handed to the page layer.
type Snapshot struct {
	// Posts is the full post set, ascending by date. Post pages resolve
	// against it so an unpublished post is still reachable by slug.
	Posts []Post
	// Listed is Posts filtered by the published flag; used for listings.
	Listed    []Post
	Featured  Post
	HasPosts  bool
	TagCounts []TagCount
	// About is the optional about page; nil when the site has none.
	About *Page

	bySlug map[string]int
}

// TagView is the data for a tag page.
type TagView struct {
	Tag   Tag
	Posts []Post
}

// NewSnapshot aggregates posts, which must be sorted ascending by date.
func NewSnapshot(posts []Post, opts SnapshotOptions) Snapshot {
	listed := FilterPublished(posts, opts.IncludeUnpublished)
	counts, collisions := countTags(listed)
	s := Snapshot{
		Posts:     posts,
		Listed:    listed,
		TagCounts: counts,
		bySlug:    make(map[string]int, len(posts)),
	}
	if len(collisions) > 0 {
		logger := opts.Logger
		if logger == nil {
			logger = slog.Default()
		}
		for _, c := range collisions {
			logger.Warn("tag labels collide after slugging", "slug", c.Slug, "kept", c.Kept, "merged", c.Merged)
		}
	}
	s.Featured, s.HasPosts = FeaturedPost(listed, opts.Featured)
	for i, p := range posts {
		s.bySlug[p.Slug] = i
	}
	return s
}

// Latest returns the listed posts newest first.
func (s Snapshot) Latest() []Post {
	return Latest(s.Listed)
}

// Post resolves a post by slug.
func (s Snapshot) Post(slug string) (Post, bool) {
	i, ok := s.bySlug[slug]
	if !ok {
		return Post{}, false
	}
	return s.Posts[i], true
}

// ForTag returns the tag page data for a tag slug.
func (s Snapshot) ForTag(slug string) (TagView, bool) {
	tag, ok := LookupTag(s.Listed, slug)
	if !ok {
		return TagView{}, false
	}
	return TagView{Tag: tag, Posts: Latest(FilterByTagSlug(s.Listed, slug))}, true
}

// Tags returns every tag on listed posts, most used first.
func (s Snapshot) Tags() []Tag {
	out := make([]Tag, len(s.TagCounts))
	for i, c := range s.TagCounts {
		out[i] = c.Tag
	}
	return out
}
