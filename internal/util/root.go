package util

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

// lookupTimeout bounds the DNS lookup done for hostname roots.
const lookupTimeout = 3 * time.Second

// lookupNetIP resolves hostname roots. Replaced in tests.
var lookupNetIP = net.DefaultResolver.LookupNetIP

// reservedPrefixes are non-routable ranges not covered by the netip predicates.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("2001:db8::/32"),
}

// RootError explains why a URL cannot start a crawl.
type RootError struct {
	URL    string
	Reason string
}

func (e *RootError) Error() string {
	return fmt.Sprintf("crawl root %q: %s", RedactURL(e.URL), e.Reason)
}

// ValidateRoot checks that rawURL is an absolute http(s) URL with a host.
// Unless allowPrivate is set, roots on loopback, private or reserved
// addresses are refused, including hostnames that resolve to one. Lookup
// failures are not errors: the first fetch reports an unreachable host.
func ValidateRoot(rawURL string, allowPrivate bool) error {
	if strings.TrimSpace(rawURL) == "" {
		return &RootError{URL: rawURL, Reason: "URL is empty"}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return &RootError{URL: rawURL, Reason: "invalid URL syntax"}
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return &RootError{URL: rawURL, Reason: fmt.Sprintf("unsupported scheme %q (use http or https)", parsed.Scheme)}
	}
	host := parsed.Hostname()
	if host == "" {
		return &RootError{URL: rawURL, Reason: "missing host"}
	}

	if allowPrivate {
		return nil
	}
	if reason := privateTarget(host); reason != "" {
		return &RootError{URL: rawURL, Reason: reason + " (use --allow-private-ips to crawl it)"}
	}
	return nil
}

func privateTarget(host string) string {
	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") || lower == "localhost.localdomain" {
		return "localhost is blocked"
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if isPrivate(addr) {
			return fmt.Sprintf("private address %s is blocked", addr.Unmap())
		}
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	addrs, _ := lookupNetIP(ctx, "ip", host)
	for _, addr := range addrs {
		if isPrivate(addr) {
			return fmt.Sprintf("%s resolves to private address %s", host, addr.Unmap())
		}
	}
	return ""
}

func isPrivate(addr netip.Addr) bool {
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast() {
		return true
	}
	for _, prefix := range reservedPrefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
