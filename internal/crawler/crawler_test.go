package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/masahif/sitescribe/internal/config"
)

// newTestSite serves pages keyed by path as HTML. "{{base}}" in a page is
// replaced by the server URL. Unknown paths return 404.
func newTestSite(t *testing.T, pages map[string]string) (*httptest.Server, *sync.Map) {
	t.Helper()

	hits := &sync.Map{}
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count, _ := hits.LoadOrStore(r.URL.Path, new(atomic.Int32))
		count.(*atomic.Int32).Add(1)

		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.URL.Path == "/robots.txt" {
			w.Header().Set("Content-Type", "text/plain")
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		}
		_, _ = w.Write([]byte(strings.ReplaceAll(page, "{{base}}", server.URL)))
	}))
	t.Cleanup(server.Close)

	return server, hits
}

func hitCount(hits *sync.Map, path string) int32 {
	count, ok := hits.Load(path)
	if !ok {
		return 0
	}
	return count.(*atomic.Int32).Load()
}

func newTestConfig(baseURL string, maxDepth int) *config.CrawlConfig {
	cfg := config.DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.MaxDepth = maxDepth
	cfg.Delay = 0
	cfg.RequestTimeout = 5 * time.Second
	return cfg
}

func newTestCrawler(t *testing.T, cfg *config.CrawlConfig, opts ...Option) *DefaultCrawler {
	t.Helper()

	c, err := NewCrawler(cfg, opts...)
	if err != nil {
		t.Fatalf("Failed to create crawler: %v", err)
	}
	t.Cleanup(func() { _ = c.Stop() })
	return c
}

// countingPacer records how many times the crawler paced
type countingPacer struct {
	waits atomic.Int32
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits.Add(1)
	return ctx.Err()
}

// recordingSink collects every saved result
type recordingSink struct {
	mu      sync.Mutex
	results []*PageResult
	onSave  func()
}

func (s *recordingSink) SavePageResult(result *PageResult) error {
	s.mu.Lock()
	s.results = append(s.results, result)
	s.mu.Unlock()
	if s.onSave != nil {
		s.onSave()
	}
	return nil
}

func TestCrawlFiltersOutOfScopeLinks(t *testing.T) {
	server, hits := newTestSite(t, map[string]string{
		"/": `<html><head><title>Home</title></head><body>
			<a href="/about">About</a>
			<a href="/logo.png">Logo</a>
			<a href="https://other.test/x">Elsewhere</a>
		</body></html>`,
		"/about": `<html><head><title>About</title></head><body><p>About us</p></body></html>`,
	})

	c := newTestCrawler(t, newTestConfig(server.URL+"/", 1))
	results, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d: %v", len(results), keys(results))
	}

	home, ok := results[server.URL+"/"]
	if !ok {
		t.Fatal("Missing result for the base URL")
	}
	if home.Depth != 0 {
		t.Errorf("Expected base URL at depth 0, got %d", home.Depth)
	}
	if len(home.Links) != 1 || home.Links[0] != server.URL+"/about" {
		t.Errorf("Expected only the about link, got %v", home.Links)
	}

	about, ok := results[server.URL+"/about"]
	if !ok {
		t.Fatal("Missing result for /about")
	}
	if about.Depth != 1 || about.Metadata.Title != "About" {
		t.Errorf("Unexpected about result: depth=%d title=%q", about.Depth, about.Metadata.Title)
	}

	if hitCount(hits, "/logo.png") != 0 {
		t.Error("Image link must never be fetched")
	}
}

func TestCrawlDepthZero(t *testing.T) {
	server, hits := newTestSite(t, map[string]string{
		"/":      `<html><body><a href="/about">About</a></body></html>`,
		"/about": `<html><body><p>About</p></body></html>`,
	})

	c := newTestCrawler(t, newTestConfig(server.URL+"/", 0))
	results, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if len(results[server.URL+"/"].Links) != 1 {
		t.Error("Links are still extracted at the depth limit")
	}
	if hitCount(hits, "/about") != 0 {
		t.Error("Links beyond max depth must not be fetched")
	}
}

func TestCrawlUnreachableBase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	base := server.URL + "/"
	c := newTestCrawler(t, newTestConfig(base, 3))
	results, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	result := results[base]
	if result == nil {
		t.Fatal("Missing error result for base URL")
	}
	if !result.IsError() {
		t.Errorf("Expected error status, got %s", result.Status)
	}
	if result.Metadata.Title != ErrorTitle {
		t.Errorf("Expected title %q, got %q", ErrorTitle, result.Metadata.Title)
	}
	if result.Links == nil || len(result.Links) != 0 {
		t.Errorf("Expected empty links, got %v", result.Links)
	}
	if !strings.HasPrefix(result.Content, "# Error scraping "+base+"\n\nError: ") {
		t.Errorf("Unexpected error content: %q", result.Content)
	}
	if result.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status code 500, got %d", result.StatusCode)
	}

	stats := c.GetStats()
	if stats.ErrorCount != 1 || stats.PagesCrawled != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestCrawlConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL + "/"
	server.Close()

	c := newTestCrawler(t, newTestConfig(base, 2))
	results, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	result := results[base]
	if result == nil || !result.IsError() {
		t.Fatalf("Expected a single error result, got %v", results)
	}
	if !strings.Contains(result.Content, "Error") || !strings.Contains(result.Content, base) {
		t.Errorf("Error content should name the URL: %q", result.Content)
	}
}

func TestCrawlDepthFirstOrder(t *testing.T) {
	server, _ := newTestSite(t, map[string]string{
		"/":  `<html><body><a href="/a">A</a><a href="/b">B</a></body></html>`,
		"/a": `<html><body><a href="/c">C</a><a href="/">Home</a></body></html>`,
		"/b": `<html><body><a href="/c">C</a></body></html>`,
		"/c": `<html><body><a href="/b">B</a></body></html>`,
	})

	c := newTestCrawler(t, newTestConfig(server.URL+"/", 3))
	if _, err := c.Crawl(context.Background()); err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	expected := []struct {
		path  string
		depth int
	}{
		{"/", 0},
		{"/a", 1},
		{"/c", 2},
		{"/b", 3},
	}

	ordered := c.OrderedResults()
	if len(ordered) != len(expected) {
		t.Fatalf("Expected %d results, got %d", len(expected), len(ordered))
	}
	for i, want := range expected {
		if ordered[i].URL != server.URL+want.path {
			t.Errorf("Position %d: expected %s, got %s", i, want.path, ordered[i].URL)
		}
		if ordered[i].Depth != want.depth {
			t.Errorf("%s: expected depth %d, got %d", want.path, want.depth, ordered[i].Depth)
		}
	}
}

func TestCrawlFetchesEachURLOnce(t *testing.T) {
	server, hits := newTestSite(t, map[string]string{
		"/":  `<html><body><a href="/a">A</a><a href="/a#top">A again</a><a href="/b">B</a></body></html>`,
		"/a": `<html><body><a href="/">Home</a><a href="/b">B</a></body></html>`,
		"/b": `<html><body><a href="/a">A</a><a href="/">Home</a></body></html>`,
	})

	c := newTestCrawler(t, newTestConfig(server.URL+"/", 5))
	results, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	if len(results) != 3 {
		t.Errorf("Expected 3 results, got %d", len(results))
	}
	for _, path := range []string{"/", "/a", "/b"} {
		if n := hitCount(hits, path); n != 1 {
			t.Errorf("%s fetched %d times", path, n)
		}
	}
}

func TestScrapeRecursiveDepthMonotonic(t *testing.T) {
	server, _ := newTestSite(t, map[string]string{
		"/":  `<html><body><a href="/a">A</a></body></html>`,
		"/a": `<html><body><a href="/b">B</a></body></html>`,
		"/b": `<html><body><a href="/c">C</a></body></html>`,
		"/c": `<html><body><p>leaf</p></body></html>`,
	})

	var previous map[string]*PageResult
	for depth := 0; depth <= 3; depth++ {
		c := newTestCrawler(t, newTestConfig(server.URL+"/", depth))
		results := c.ScrapeRecursive(context.Background(), server.URL+"/", 0)

		if len(results) != depth+1 {
			t.Errorf("max depth %d: expected %d results, got %d", depth, depth+1, len(results))
		}
		for url := range previous {
			if _, ok := results[url]; !ok {
				t.Errorf("max depth %d lost %s", depth, url)
			}
		}
		for url, result := range results {
			if result.Depth > depth {
				t.Errorf("%s recorded at depth %d beyond max %d", url, result.Depth, depth)
			}
		}
		previous = results
	}
}

func TestScrapeRecursiveStartDepthBeyondMax(t *testing.T) {
	server, hits := newTestSite(t, map[string]string{
		"/": `<html><body><p>x</p></body></html>`,
	})

	c := newTestCrawler(t, newTestConfig(server.URL+"/", 1))
	results := c.ScrapeRecursive(context.Background(), server.URL+"/", 2)

	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
	if hitCount(hits, "/") != 0 {
		t.Error("URL beyond max depth must not be fetched")
	}
}

func TestScrapePageIdempotent(t *testing.T) {
	server, hits := newTestSite(t, map[string]string{
		"/": `<html><head><title>Home</title></head><body><a href="/a">A</a></body></html>`,
	})

	c := newTestCrawler(t, newTestConfig(server.URL+"/", 3))
	ctx := context.Background()

	first, ok := c.ScrapePage(ctx, server.URL+"/")
	if !ok || first == nil {
		t.Fatal("First scrape should produce a result")
	}
	if first.Metadata.Title != "Home" {
		t.Errorf("Expected title Home, got %q", first.Metadata.Title)
	}

	second, ok := c.ScrapePage(ctx, server.URL+"/")
	if ok || second != nil {
		t.Error("Second scrape of a visited URL should be a no-op")
	}
	if len(c.Results()) != 1 {
		t.Errorf("Expected 1 result, got %d", len(c.Results()))
	}
	if hitCount(hits, "/") != 1 {
		t.Errorf("Expected a single fetch, got %d", hitCount(hits, "/"))
	}
}

func TestCrawlRecordsUnsupportedContentAsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><a href="/data">Data</a></body></html>`))
		case "/data":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte{0, 1, 2, 3})
		}
	}))
	defer server.Close()

	c := newTestCrawler(t, newTestConfig(server.URL+"/", 1))
	results, _ := c.Crawl(context.Background())

	data := results[server.URL+"/data"]
	if data == nil || !data.IsError() {
		t.Fatalf("Expected error result for binary page, got %+v", data)
	}
	if !strings.Contains(data.Error, ErrUnsupportedContent.Error()) {
		t.Errorf("Expected unsupported content error, got %q", data.Error)
	}

	success, failed := c.session.Counts()
	if success != 1 || failed != 1 {
		t.Errorf("Expected 1 success and 1 error, got %d and %d", success, failed)
	}
}

func TestCrawlStreamsToSink(t *testing.T) {
	server, _ := newTestSite(t, map[string]string{
		"/":  `<html><body><a href="/a">A</a><a href="/missing">Missing</a></body></html>`,
		"/a": `<html><body><p>A</p></body></html>`,
	})

	sink := &recordingSink{}
	c := newTestCrawler(t, newTestConfig(server.URL+"/", 2), WithSink(sink))
	results, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	if len(sink.results) != len(results) {
		t.Fatalf("Sink received %d results, crawl recorded %d", len(sink.results), len(results))
	}
	for _, saved := range sink.results {
		if results[saved.URL] != saved {
			t.Errorf("Sink result for %s differs from the recorded one", saved.URL)
		}
	}
	if !results[server.URL+"/missing"].IsError() {
		t.Error("Missing page should be an error result")
	}
}

func TestCrawlPacesEveryFetch(t *testing.T) {
	server, _ := newTestSite(t, map[string]string{
		"/":  `<html><body><a href="/a">A</a><a href="/b">B</a><a href="/a">A</a></body></html>`,
		"/a": `<html><body><a href="/">Home</a></body></html>`,
		"/b": `<html><body><p>B</p></body></html>`,
	})

	pacer := &countingPacer{}
	c := newTestCrawler(t, newTestConfig(server.URL+"/", 2), WithPacer(pacer))
	results, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if n := pacer.waits.Load(); n != 3 {
		t.Errorf("Expected one wait per fetch, got %d for 3 fetches", n)
	}
}

func TestCrawlSleepPacingSpacing(t *testing.T) {
	server, _ := newTestSite(t, map[string]string{
		"/":  `<html><body><a href="/a">A</a></body></html>`,
		"/a": `<html><body><p>A</p></body></html>`,
	})

	cfg := newTestConfig(server.URL+"/", 1)
	cfg.Delay = 0.1

	c := newTestCrawler(t, cfg)
	start := time.Now()
	if _, err := c.Crawl(context.Background()); err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("Expected at least one delay between fetches, took %v", elapsed)
	}
}

// fetchStarts serves two linked pages and records when each request arrived
func fetchStarts(t *testing.T) (*httptest.Server, func() []time.Time) {
	t.Helper()

	var mu sync.Mutex
	var starts []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		starts = append(starts, time.Now())
		mu.Unlock()

		w.Header().Set("Content-Type", "text/html")
		if r.URL.Path == "/" {
			_, _ = w.Write([]byte(`<html><body><a href="/a">A</a></body></html>`))
			return
		}
		_, _ = w.Write([]byte(`<html><body><p>A</p></body></html>`))
	}))
	t.Cleanup(server.Close)

	return server, func() []time.Time {
		mu.Lock()
		defer mu.Unlock()
		return append([]time.Time(nil), starts...)
	}
}

func TestCrawlIntervalPacingSpacing(t *testing.T) {
	server, starts := fetchStarts(t)

	cfg := newTestConfig(server.URL+"/", 1)
	cfg.Delay = 0.3
	cfg.Pacing = config.PacingInterval

	c := newTestCrawler(t, cfg)
	results, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	got := starts()
	if len(got) != 2 {
		t.Fatalf("Expected 2 fetches, got %d", len(got))
	}
	// Small slack for timer granularity
	if gap := got[1].Sub(got[0]); gap < 280*time.Millisecond {
		t.Errorf("Fetch starts %v apart with interval pacing, want at least 300ms", gap)
	}
}

func TestCrawlSleepPacingFirstFetchImmediate(t *testing.T) {
	server, starts := fetchStarts(t)

	cfg := newTestConfig(server.URL+"/", 1)
	cfg.Delay = 0.3

	c := newTestCrawler(t, cfg)
	begin := time.Now()
	if _, err := c.Crawl(context.Background()); err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	got := starts()
	if len(got) != 2 {
		t.Fatalf("Expected 2 fetches, got %d", len(got))
	}
	if wait := got[0].Sub(begin); wait > 200*time.Millisecond {
		t.Errorf("First fetch should not be delayed, started after %v", wait)
	}
	if gap := got[1].Sub(got[0]); gap < 300*time.Millisecond {
		t.Errorf("Fetch starts %v apart, want at least 300ms", gap)
	}
}

func TestScrapePageAtRecordsDepth(t *testing.T) {
	server, _ := newTestSite(t, map[string]string{
		"/":     `<html><body><p>Home</p></body></html>`,
		"/deep": `<html><body><p>Deep</p></body></html>`,
	})

	c := newTestCrawler(t, newTestConfig(server.URL+"/", 3))
	ctx := context.Background()

	result, ok := c.ScrapePageAt(ctx, server.URL+"/deep", 2)
	if !ok || result.Depth != 2 {
		t.Fatalf("Expected result at depth 2, got %+v", result)
	}

	result, ok = c.ScrapePage(ctx, server.URL+"/")
	if !ok || result.Depth != 0 {
		t.Errorf("Expected ScrapePage to record depth 0, got %+v", result)
	}

	if _, ok := c.ScrapePageAt(ctx, server.URL+"/deep", 1); ok {
		t.Error("A visited URL must not be scraped again at another depth")
	}
}

func TestCrawlRespectsRobots(t *testing.T) {
	server, hits := newTestSite(t, map[string]string{
		"/robots.txt":   "User-agent: *\nDisallow: /private\n",
		"/":             `<html><body><a href="/private/page">Private</a><a href="/public">Public</a></body></html>`,
		"/public":       `<html><body><p>Public</p></body></html>`,
		"/private/page": `<html><body><p>Secret</p></body></html>`,
	})

	cfg := newTestConfig(server.URL+"/", 2)
	cfg.RespectRobots = true

	c := newTestCrawler(t, cfg)
	results, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	if _, ok := results[server.URL+"/private/page"]; ok {
		t.Error("Disallowed URL must not produce a result")
	}
	if _, ok := results[server.URL+"/public"]; !ok {
		t.Error("Allowed URL missing from results")
	}
	if hitCount(hits, "/private/page") != 0 {
		t.Error("Disallowed URL must not be fetched")
	}
	if hitCount(hits, "/robots.txt") != 1 {
		t.Errorf("robots.txt should be fetched once, got %d", hitCount(hits, "/robots.txt"))
	}
	if !c.session.Visited(server.URL + "/private/page") {
		t.Error("Disallowed URL should be marked visited")
	}
	if c.GetStats().PagesSkipped != 1 {
		t.Errorf("Expected 1 skipped page, got %d", c.GetStats().PagesSkipped)
	}
}

func TestCrawlIgnoresRobotsByDefault(t *testing.T) {
	server, hits := newTestSite(t, map[string]string{
		"/robots.txt": "User-agent: *\nDisallow: /\n",
		"/":           `<html><body><p>Home</p></body></html>`,
	})

	c := newTestCrawler(t, newTestConfig(server.URL+"/", 1))
	results, _ := c.Crawl(context.Background())

	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
	if hitCount(hits, "/robots.txt") != 0 {
		t.Error("robots.txt should not be requested when not respected")
	}
}

func TestCrawlAppliesRobotsCrawlDelay(t *testing.T) {
	server, _ := newTestSite(t, map[string]string{
		"/robots.txt": "User-agent: *\nCrawl-delay: 2\n",
		"/":           `<html><body><p>Home</p></body></html>`,
	})

	cfg := newTestConfig(server.URL+"/", 0)
	cfg.RespectRobots = true

	pacer := NewSleepPacer(0)
	c := newTestCrawler(t, cfg, WithPacer(pacer))
	if _, err := c.Crawl(context.Background()); err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	if pacer.Delay() != 2*time.Second {
		t.Errorf("Expected delay raised to 2s, got %v", pacer.Delay())
	}
}

func TestCrawlCancelledBetweenPages(t *testing.T) {
	server, hits := newTestSite(t, map[string]string{
		"/":  `<html><body><a href="/a">A</a><a href="/b">B</a></body></html>`,
		"/a": `<html><body><p>A</p></body></html>`,
		"/b": `<html><body><p>B</p></body></html>`,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{onSave: cancel}
	c := newTestCrawler(t, newTestConfig(server.URL+"/", 2), WithSink(sink))
	results, err := c.Crawl(ctx)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected partial results with 1 page, got %d", len(results))
	}
	if hitCount(hits, "/a")+hitCount(hits, "/b") != 0 {
		t.Error("No page should be fetched after cancellation")
	}
}

func TestResultsReadableDuringCrawl(t *testing.T) {
	server, _ := newTestSite(t, map[string]string{
		"/":  `<html><body><a href="/a">A</a></body></html>`,
		"/a": `<html><body><p>A</p></body></html>`,
	})

	var c *DefaultCrawler
	var seen []int
	sink := &recordingSink{}
	sink.onSave = func() { seen = append(seen, len(c.Results())) }

	c = newTestCrawler(t, newTestConfig(server.URL+"/", 1), WithSink(sink))
	if _, err := c.Crawl(context.Background()); err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("Expected result counts [1 2] during the crawl, got %v", seen)
	}
}

func TestNewCrawlerRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.CrawlConfig)
		want   error
	}{
		{"empty base", func(c *config.CrawlConfig) { c.BaseURL = "" }, config.ErrEmptyBaseURL},
		{"no host", func(c *config.CrawlConfig) { c.BaseURL = "https://" }, config.ErrInvalidBaseURL},
		{"bad scheme", func(c *config.CrawlConfig) { c.BaseURL = "ftp://example.test" }, config.ErrInvalidBaseURL},
		{"bad pattern", func(c *config.CrawlConfig) { c.ExcludePatterns = []string{"("} }, config.ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig("https://example.test/", 1)
			tt.mutate(cfg)

			_, err := NewCrawler(cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNewCrawlerSelectsPacer(t *testing.T) {
	cfg := newTestConfig("https://example.test/", 1)
	cfg.Pacing = config.PacingInterval

	c, err := NewCrawler(cfg)
	if err != nil {
		t.Fatalf("Failed to create crawler: %v", err)
	}
	if _, ok := c.pacer.(*RateLimiter); !ok {
		t.Errorf("Expected *RateLimiter for interval pacing, got %T", c.pacer)
	}
}

func keys(results map[string]*PageResult) []string {
	out := make([]string, 0, len(results))
	for k := range results {
		out = append(out, k)
	}
	return out
}
