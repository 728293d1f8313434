// Package util provides URL and error helpers shared by the crawler packages.
package util

import (
	"net/url"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveParams are query parameter names whose values never reach logs
// or reports. Keys are lower case.
var sensitiveParams = map[string]bool{
	"api_key": true, "apikey": true, "api-key": true,
	"token": true, "access_token": true, "auth_token": true, "auth": true,
	"password": true, "passwd": true, "pwd": true,
	"secret": true, "client_secret": true,
	"key": true, "private_key": true,
	"session": true, "session_id": true, "sessionid": true, "sid": true,
	"signature": true, "sig": true,
}

// RedactURL replaces sensitive query values and any userinfo password in a
// crawled URL. URLs that need no change are returned as given, so visited
// URLs keep their exact spelling.
func RedactURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	changed := false
	if _, hasPassword := parsed.User.Password(); hasPassword {
		parsed.User = url.UserPassword(parsed.User.Username(), redacted)
		changed = true
	}

	if parsed.RawQuery != "" {
		query := parsed.Query()
		for key := range query {
			if sensitiveParams[strings.ToLower(key)] {
				query.Set(key, redacted)
				changed = true
			}
		}
		if changed {
			parsed.RawQuery = query.Encode()
		}
	}

	if !changed {
		return rawURL
	}
	return parsed.String()
}

var (
	// quotedURLPattern matches the request URL net/http quotes in client
	// errors, e.g. Get "https://x.com/a".
	quotedURLPattern = regexp.MustCompile(`"https?://[^"]*"`)
	ipv4Pattern      = regexp.MustCompile(`\b\d{1,3}(?:\.\d{1,3}){3}(:\d+)?\b`)
	ipv6Pattern      = regexp.MustCompile(`\[[0-9a-fA-F:.]+\](:\d+)?`)
)

// RedactFetchError hides peer and resolver addresses in a fetch error while
// keeping ports, and redacts the request URL it quotes with RedactURL. The
// quoted URL keeps its host: it is the page that failed.
//
//	making request: Get "http://x.com/a?token=t": dial tcp 10.0.0.5:80: connect: connection refused
//	making request: Get "http://x.com/a?token=%5BREDACTED%5D": dial tcp [IP]:80: connect: connection refused
func RedactFetchError(msg string) string {
	var b strings.Builder
	last := 0
	for _, loc := range quotedURLPattern.FindAllStringIndex(msg, -1) {
		b.WriteString(redactAddresses(msg[last:loc[0]]))
		b.WriteString(`"` + RedactURL(msg[loc[0]+1:loc[1]-1]) + `"`)
		last = loc[1]
	}
	b.WriteString(redactAddresses(msg[last:]))
	return b.String()
}

func redactAddresses(s string) string {
	s = ipv6Pattern.ReplaceAllString(s, "[IPv6]$1")
	return ipv4Pattern.ReplaceAllString(s, "[IP]$1")
}

// DisplayError returns msg unchanged in verbose mode and redacted otherwise.
func DisplayError(msg string, verbose bool) string {
	if verbose {
		return msg
	}
	return RedactFetchError(msg)
}
