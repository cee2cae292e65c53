package collect

import (
	"regexp"
	"strings"
)

const gridAnchorSelector = "a[href*='/p/'], a[href*='/reel/']"

var (
	likesRe    = regexp.MustCompile(`(?i)([\d.,]+[km]?)\s+likes`)
	commentsRe = regexp.MustCompile(`(?i)([\d.,]+[km]?)\s+comments`)
	shortcode  = regexp.MustCompile(`/(?:reel|p)/([^/]+)/`)
)

// likesText pulls the raw likes counter out of page body text.
func likesText(body string) string {
	if m := likesRe.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return ""
}

// commentsText pulls the raw comments counter out of page body text.
func commentsText(body string) string {
	if m := commentsRe.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return ""
}

// Shortcode extracts the short item code from a post or reel URL.
// Empty when the URL has neither form.
func Shortcode(url string) string {
	if m := shortcode.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}

// absoluteURL resolves a grid anchor href against the site base.
func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}

// candidateURLs resolves grid hrefs to absolute post URLs, keeping
// only post and reel paths.
func candidateURLs(base string, hrefs []string) []string {
	out := make([]string, 0, len(hrefs))
	for _, h := range hrefs {
		if !strings.Contains(h, "/p/") && !strings.Contains(h, "/reel/") {
			continue
		}
		out = append(out, absoluteURL(base, h))
	}
	return out
}
