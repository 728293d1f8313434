// Package crawler handles link discovery: extracting candidate links from
// HTML text and normalizing them into same-origin URLs.
package crawler

import (
	"iter"
	"strings"
)

const (
	hrefMarker   = `href="`
	closingQuote = `"`
)

// ExtractLinks returns the raw href values found in html, in document order.
//
// This is a textual scan for the literal href=" marker, not an HTML parser:
// entities are not decoded, single-quoted attributes are ignored and tag
// context is not checked. A marker without a closing quote ends the scan.
// The returned sequence is lazy and may be ranged over any number of times.
func ExtractLinks(html string) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := html
		for {
			pos := strings.Index(rest, hrefMarker)
			if pos < 0 {
				return
			}
			rest = rest[pos+len(hrefMarker):]

			end := strings.Index(rest, closingQuote)
			if end < 0 {
				return
			}
			if !yield(rest[:end]) {
				return
			}
			rest = rest[end+len(closingQuote):]
		}
	}
}

// CollectLinks materializes ExtractLinks into a slice.
func CollectLinks(html string) []string {
	links := make([]string, 0, 16)
	for link := range ExtractLinks(html) {
		links = append(links, link)
	}
	return links
}

// Discover extracts links from body and returns those that normalize to a
// same-origin URL of pageURL, preserving document order. Duplicates are kept;
// deduplication is the frontier's job.
func Discover(body, pageURL string) []string {
	origin, ok := Origin(pageURL)
	if !ok {
		return nil
	}

	var links []string
	for raw := range ExtractLinks(body) {
		if link, ok := normalizeAgainst(raw, origin); ok {
			links = append(links, link)
		}
	}
	return links
}
