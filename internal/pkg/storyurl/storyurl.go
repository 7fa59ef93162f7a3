// Package storyurl validates and parses URLs of the target publishing site.
// All inbound URLs pass through here before any extraction work begins.
package storyurl

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Site hosts accepted for story and profile URLs
var siteHosts = map[string]bool{
	"fyctia.com":     true,
	"www.fyctia.com": true,
}

var (
	storyPathRe   = regexp.MustCompile(`^/story/(\d+)(?:-([^/]*))?/?$`)
	profilePathRe = regexp.MustCompile(`^/user/([\w.-]+)/?$`)
)

// StoryRef identifies a story page on the site
type StoryRef struct {
	URL  string
	ID   int64
	Slug string
}

// ParseStory validates a story URL and extracts its numeric identifier and
// slug. The slug may be empty; the identifier is always present.
func ParseStory(rawURL string) (*StoryRef, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if !siteHosts[strings.ToLower(u.Host)] {
		return nil, fmt.Errorf("host %q is not a supported site", u.Host)
	}

	matches := storyPathRe.FindStringSubmatch(u.Path)
	if matches == nil {
		return nil, fmt.Errorf("path %q does not match the story URL shape", u.Path)
	}

	id, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid story identifier %q: %w", matches[1], err)
	}

	return &StoryRef{
		URL:  rawURL,
		ID:   id,
		Slug: matches[2],
	}, nil
}

// IsStory reports whether the URL matches the site's story URL shape
func IsStory(rawURL string) bool {
	_, err := ParseStory(rawURL)
	return err == nil
}

// ParseProfile validates an author-profile URL and extracts the username
func ParseProfile(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if !siteHosts[strings.ToLower(u.Host)] {
		return "", fmt.Errorf("host %q is not a supported site", u.Host)
	}

	matches := profilePathRe.FindStringSubmatch(u.Path)
	if matches == nil {
		return "", fmt.Errorf("path %q does not match the profile URL shape", u.Path)
	}

	return matches[1], nil
}

// ProfileURL expands a bare username into a canonical profile URL
func ProfileURL(username string) string {
	return "https://www.fyctia.com/user/" + url.PathEscape(username)
}

// Resolve makes a possibly-relative href absolute against a base page URL.
// Returns the href unchanged when it is already absolute or the base is
// unparseable.
func Resolve(baseURL, href string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
