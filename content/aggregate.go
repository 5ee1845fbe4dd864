package content

import "sort"

// FeaturedPolicy decides which post wins when several are marked featured.
type FeaturedPolicy int

const (
	// FeaturedLatest picks the most recent featured post.
	FeaturedLatest FeaturedPolicy = iota
	// FeaturedEarliest picks the earliest featured post.
	FeaturedEarliest
)

// ParseFeaturedPolicy maps a config value to a policy. Unknown values fall
// back to FeaturedLatest.
func ParseFeaturedPolicy(s string) FeaturedPolicy {
	if s == "earliest" {
		return FeaturedEarliest
	}
	return FeaturedLatest
}

// Tag is a tag's canonical slug and the display label it was first seen with.
type Tag struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

// TagCount is the number of posts carrying a tag.
type TagCount struct {
	Tag
	Count int `json:"count"`
}

// FeaturedPost returns the featured post chosen by policy from posts sorted
// ascending by date. Without any featured post it returns the most recent
// post. ok is false when posts is empty.
func FeaturedPost(posts []Post, policy FeaturedPolicy) (Post, bool) {
	if len(posts) == 0 {
		return Post{}, false
	}
	switch policy {
	case FeaturedEarliest:
		for _, p := range posts {
			if p.Meta.Featured {
				return p, true
			}
		}
	default:
		for i := len(posts) - 1; i >= 0; i-- {
			if posts[i].Meta.Featured {
				return posts[i], true
			}
		}
	}
	return posts[len(posts)-1], true
}

// TagSlugs returns the distinct tag slugs across posts, sorted.
func TagSlugs(posts []Post) []string {
	set := make(map[string]struct{})
	for _, p := range posts {
		for _, t := range p.Meta.Tags {
			set[Slugify(t)] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// TagCollision records two labels that map to the same tag slug. The first
// label seen is kept for display.
type TagCollision struct {
	Slug   string
	Kept   string
	Merged string
}

// TagCounts counts the posts carrying each tag, keyed by tag slug. The result
// is ordered by count descending, ties keeping first-appearance order.
func TagCounts(posts []Post) []TagCount {
	counts, _ := countTags(posts)
	return counts
}

func countTags(posts []Post) ([]TagCount, []TagCollision) {
	index := make(map[string]int)
	var (
		counts     []TagCount
		collisions []TagCollision
	)
	for _, p := range posts {
		seen := make(map[string]struct{}, len(p.Meta.Tags))
		for _, label := range p.Meta.Tags {
			slug := Slugify(label)
			if _, dup := seen[slug]; dup {
				continue
			}
			seen[slug] = struct{}{}
			i, ok := index[slug]
			if !ok {
				index[slug] = len(counts)
				counts = append(counts, TagCount{Tag: Tag{Slug: slug, Label: label}, Count: 1})
				continue
			}
			if counts[i].Label != label {
				collisions = append(collisions, TagCollision{Slug: slug, Kept: counts[i].Label, Merged: label})
			}
			counts[i].Count++
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts, collisions
}

// CountsBySlug flattens counts into a slug-keyed map.
func CountsBySlug(counts []TagCount) map[string]int {
	m := make(map[string]int, len(counts))
	for _, c := range counts {
		m[c.Slug] = c.Count
	}
	return m
}

// CountsByLabel flattens counts into a label-keyed map.
func CountsByLabel(counts []TagCount) map[string]int {
	m := make(map[string]int, len(counts))
	for _, c := range counts {
		m[c.Label] = c.Count
	}
	return m
}

// LookupTag finds the display label for a tag slug.
func LookupTag(posts []Post, slug string) (Tag, bool) {
	for _, p := range posts {
		for _, t := range p.Meta.Tags {
			if Slugify(t) == slug {
				return Tag{Slug: slug, Label: t}, true
			}
		}
	}
	return Tag{}, false
}

// FilterByTagSlug returns the posts with at least one tag whose slug is tagSlug.
func FilterByTagSlug(posts []Post, tagSlug string) []Post {
	var out []Post
	for _, p := range posts {
		for _, t := range p.Meta.Tags {
			if Slugify(t) == tagSlug {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// FilterPublished drops unpublished posts unless includeUnpublished is set.
func FilterPublished(posts []Post, includeUnpublished bool) []Post {
	if includeUnpublished {
		return append([]Post(nil), posts...)
	}
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.Meta.Published {
			out = append(out, p)
		}
	}
	return out
}

// Latest returns posts newest first without modifying the input.
func Latest(posts []Post) []Post {
	out := make([]Post, len(posts))
	for i, p := range posts {
		out[len(posts)-1-i] = p
	}
	return out
}
