// Package main provides the entry point for the skitter CLI.
//
// Skitter crawls a single site from a root URL, following same-origin links
// with a bounded number of concurrent fetches, and reports what it visited.
//
// Usage:
//
//	skitter crawl --url https://example.com
//	skitter init
//
// See --help for all available options.
package main

func main() {
	Execute()
}
