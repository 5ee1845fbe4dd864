package content

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Field weights for Search. Tag matches dominate body matches.
const (
	TagWeight     = 0.7
	ContentWeight = 0.3
)

// Result is a post with its search score in [0, 1].
type Result struct {
	Post  Post    `json:"post"`
	Score float64 `json:"score"`
}

// Search ranks posts against a free-text query. Posts with no match are
// dropped; ties are ordered newest first. limit <= 0 means no limit.
func Search(query string, posts []Post, limit int) []Post {
	results := Rank(query, posts)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	out := make([]Post, len(results))
	for i, r := range results {
		out[i] = r.Post
	}
	return out
}

// Rank scores every post against query and returns the matches best first.
func Rank(query string, posts []Post) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	terms := strings.Fields(strings.ToLower(query))

	var results []Result
	for _, p := range posts {
		score := TagWeight*tagScore(query, p.Meta.Tags) + ContentWeight*contentScore(terms, p)
		if score > 0 {
			results = append(results, Result{Post: p, Score: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].Post.Meta.Time.After(results[j].Post.Meta.Time)
		}
		return results[i].Score > results[j].Score
	})
	return results
}

// tagScore is 1/(1+d) for the closest tag, d being the edit distance of a
// fuzzy match.
func tagScore(query string, tags []string) float64 {
	best := 0.0
	for _, t := range tags {
		d := fuzzy.RankMatchNormalizedFold(query, t)
		if d < 0 {
			continue
		}
		if s := 1 / float64(1+d); s > best {
			best = s
		}
	}
	return best
}

// contentScore is the fraction of query terms present in the title or body.
func contentScore(terms []string, p Post) float64 {
	if len(terms) == 0 {
		return 0
	}
	haystack := strings.ToLower(p.Meta.Title + "\n" + p.Content)
	hits := 0
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}
