package crawl

// Queue is a breadth-first URL queue that accepts each URL once and stops
// accepting new URLs after limit distinct ones (limit <= 0 means unbounded).
type Queue struct {
	items []string
	seen  map[string]struct{}
	next  int
	limit int
}

// NewQueue creates an empty Queue bounded to limit URLs.
func NewQueue(limit int) *Queue {
	return &Queue{
		seen:  make(map[string]struct{}),
		limit: limit,
	}
}

// Add enqueues url unless it was seen before or the queue is full.
// It reports whether url was enqueued.
func (q *Queue) Add(url string) bool {
	if _, ok := q.seen[url]; ok || q.Full() {
		return false
	}
	q.seen[url] = struct{}{}
	q.items = append(q.items, url)
	return true
}

// Full reports whether the queue has reached its limit.
func (q *Queue) Full() bool {
	return q.limit > 0 && len(q.items) >= q.limit
}

// Next pops the next unprocessed URL.
func (q *Queue) Next() (string, bool) {
	if q.next >= len(q.items) {
		return "", false
	}
	url := q.items[q.next]
	q.next++
	return url, true
}

// Len returns the number of distinct URLs accepted so far.
func (q *Queue) Len() int {
	return len(q.items)
}

// All returns every accepted URL in BFS order.
func (q *Queue) All() []string {
	return append([]string(nil), q.items...)
}
