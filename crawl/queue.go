// Package crawl — bounded BFS queue.
// Pages are deduplicated and the queue stops accepting new pages once it
// holds its limit, so discovery never outgrows web.max_pages.
package crawl

// Queue is a bounded BFS queue with URL deduplication.
type Queue struct {
	items []string
	seen  map[string]bool
	idx   int
	limit int
}

// NewQueue creates an empty Queue holding at most limit pages.
// A non-positive limit means DefaultMaxPages.
func NewQueue(limit int) *Queue {
	if limit <= 0 {
		limit = DefaultMaxPages
	}
	return &Queue{
		seen:  make(map[string]bool),
		limit: limit,
	}
}

// Add enqueues a URL unless it was seen before or the queue is full.
// It reports whether the URL was added.
func (q *Queue) Add(url string) bool {
	if q.seen[url] || q.Full() {
		return false
	}
	q.seen[url] = true
	q.items = append(q.items, url)
	return true
}

// Full reports whether the queue holds its limit.
func (q *Queue) Full() bool {
	return len(q.items) >= q.limit
}

// HasNext returns true if there are unprocessed URLs.
func (q *Queue) HasNext() bool {
	return q.idx < len(q.items)
}

// Next returns the next unprocessed URL and advances the pointer.
func (q *Queue) Next() string {
	url := q.items[q.idx]
	q.idx++
	return url
}

// Len returns the number of pages accepted so far.
func (q *Queue) Len() int {
	return len(q.items)
}

// All returns the accepted pages in BFS order.
func (q *Queue) All() []string {
	return q.items
}
