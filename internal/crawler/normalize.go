package crawler

import (
	"net/url"
	"strings"
)

// defaultPorts maps a scheme to the port that is implied when none is written.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Origin returns scheme://host[:port] for pageURL. The port is kept only when
// it is written and differs from the scheme default.
func Origin(pageURL string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}

	host := parsed.Host
	if port := parsed.Port(); port != "" && port == defaultPorts[strings.ToLower(parsed.Scheme)] {
		host = parsed.Hostname()
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
	}
	return parsed.Scheme + "://" + host, true
}

// Normalize turns a raw link found on pageURL into an absolute same-origin
// URL. It returns false for empty and fragment-only links, for links to
// other origins and for path-relative links, which are not resolved.
func Normalize(raw, pageURL string) (string, bool) {
	origin, ok := Origin(pageURL)
	if !ok {
		return "", false
	}
	return normalizeAgainst(raw, origin)
}

func normalizeAgainst(raw, origin string) (string, bool) {
	link := strings.TrimSpace(raw)

	switch {
	case link == "", strings.HasPrefix(link, "#"):
		return "", false
	case strings.HasPrefix(link, "//"):
		// Protocol-relative: may point anywhere.
		return "", false
	case strings.HasPrefix(link, "/"):
		return origin + link, true
	case hasOriginPrefix(link, origin):
		return link, true
	default:
		return "", false
	}
}

// hasOriginPrefix rejects https://example.com.evil.org for the origin
// https://example.com: the prefix must end at a path, query or fragment.
func hasOriginPrefix(link, origin string) bool {
	if !strings.HasPrefix(link, origin) {
		return false
	}
	rest := link[len(origin):]
	return rest == "" || strings.ContainsRune("/?#", rune(rest[0]))
}
