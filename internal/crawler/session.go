package crawler

import (
	"sync"
)

// Session is the traversal context of one crawl. The visited set only
// grows; a URL in it is never fetched again. Results holds one entry per
// fetched URL. The mutex lets Results be read while a crawl is running.
type Session struct {
	mu      sync.RWMutex
	visited map[string]struct{}
	results map[string]*PageResult
	order   []string
}

// NewSession creates an empty traversal context
func NewSession() *Session {
	return &Session{
		visited: make(map[string]struct{}),
		results: make(map[string]*PageResult),
	}
}

// MarkVisited adds url to the visited set. It returns false if url was
// already present, in which case the caller must not fetch it.
func (s *Session) MarkVisited(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.visited[url]; ok {
		return false
	}
	s.visited[url] = struct{}{}
	return true
}

// Visited reports whether url has been claimed for fetching
func (s *Session) Visited(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.visited[url]
	return ok
}

// Record stores the result for a visited URL
func (s *Session) Record(result *PageResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.results[result.URL]; !exists {
		s.order = append(s.order, result.URL)
	}
	s.results[result.URL] = result
}

// Result returns the recorded result for url
func (s *Session) Result(url string) (*PageResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[url]
	return r, ok
}

// Results returns a snapshot of all recorded results keyed by URL
func (s *Session) Results() map[string]*PageResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*PageResult, len(s.results))
	for k, v := range s.results {
		out[k] = v
	}
	return out
}

// Ordered returns recorded results in the order they were fetched
func (s *Session) Ordered() []*PageResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*PageResult, 0, len(s.order))
	for _, u := range s.order {
		out = append(out, s.results[u])
	}
	return out
}

// Len returns the number of recorded results
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// VisitedCount returns the size of the visited set
func (s *Session) VisitedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.visited)
}

// Counts returns the number of success and error results
func (s *Session) Counts() (success, failed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.results {
		if r.IsError() {
			failed++
		} else {
			success++
		}
	}
	return success, failed
}
