package content

import (
	"net/url"
	"path"
	"strings"
)

// PostURL is the canonical address of a post: {siteURL}/{slug}.
func PostURL(siteURL, slug string) string {
	return JoinURL(siteURL, slug)
}

// JoinURL joins a base URL with path segments. Unlike BuildURL in the
// server package it never adds a trailing slash.
func JoinURL(base string, segments ...string) string {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return base
	}
	if len(segments) == 0 {
		return u.String()
	}
	u.Path = path.Join("/", u.Path, path.Join(segments...))
	return u.String()
}

// AbsURL makes a site-relative reference absolute. Absolute URLs and
// empty values are returned unchanged.
func AbsURL(siteURL, ref string) string {
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	return JoinURL(siteURL, ref)
}
