// Package frontier holds the crawl queue and the visited set behind a single
// lock, so that checking and marking a URL as visited is one atomic step.
package frontier

import (
	"sort"
	"sync"
)

// Frontier is a FIFO queue of URLs pending visit plus the set of URLs
// already dispatched. It is safe for concurrent use.
type Frontier struct {
	mu    sync.Mutex
	queue []string
	head  int
	// visited maps a URL to whether it has been admitted for fetch. A URL
	// seeded into the frontier is present with false until admitted.
	visited map[string]bool
}

// New creates an empty frontier.
func New() *Frontier {
	return &Frontier{visited: make(map[string]bool)}
}

// Seed enqueues url and marks it visited in the same step, so that it is
// never offered again. The seeded entry is still admitted once when polled.
func (f *Frontier) Seed(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.visited[url]; exists {
		return false
	}
	f.visited[url] = false
	f.queue = append(f.queue, url)
	return true
}

// Offer enqueues url unless it is already visited. A URL may be queued more
// than once by concurrent offers; Admit discards the extra copies.
func (f *Frontier) Offer(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.visited[url]; exists {
		return false
	}
	f.queue = append(f.queue, url)
	return true
}

// Poll removes and returns the oldest queued URL. It never blocks.
func (f *Frontier) Poll() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.head == len(f.queue) {
		return "", false
	}
	url := f.queue[f.head]
	f.queue[f.head] = ""
	f.head++

	// Compact once the consumed prefix dominates the backing array.
	if f.head > 64 && f.head*2 >= len(f.queue) {
		f.queue = append(f.queue[:0:0], f.queue[f.head:]...)
		f.head = 0
	}
	return url, true
}

// Admit marks url as visited and reports whether the caller may dispatch
// it. It returns false when url was already admitted.
func (f *Frontier) Admit(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited[url] {
		return false
	}
	f.visited[url] = true
	return true
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.queue) - f.head
}

// VisitedCount returns the number of visited URLs.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.visited)
}

// Visited returns a sorted snapshot of the visited set.
func (f *Frontier) Visited() []string {
	f.mu.Lock()
	urls := make([]string, 0, len(f.visited))
	for url := range f.visited {
		urls = append(urls, url)
	}
	f.mu.Unlock()

	sort.Strings(urls)
	return urls
}
