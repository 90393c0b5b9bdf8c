// Package crawler provides the depth-bounded single-site crawler.
// It fetches pages sequentially, records one PageResult per fetched URL
// and follows in-scope links depth first until the depth bound is reached.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/masahif/sitescribe/internal/config"
)

// frontierItem is a queued URL tagged with its crawl depth
type frontierItem struct {
	url   string
	depth int
}

// Option customises a DefaultCrawler
type Option func(*DefaultCrawler)

// WithSink streams every recorded result to sink
func WithSink(sink ResultSink) Option {
	return func(c *DefaultCrawler) { c.sink = sink }
}

// WithProcessor replaces the fetch-and-convert step
func WithProcessor(p PageProcessor) Option {
	return func(c *DefaultCrawler) { c.processor = p }
}

// WithPacer replaces the pacer built from the configuration
func WithPacer(p Pacer) Option {
	return func(c *DefaultCrawler) { c.pacer = p }
}

// WithRobots replaces the robots.txt checker. It is only consulted when
// RespectRobots is set.
func WithRobots(r RobotsChecker) Option {
	return func(c *DefaultCrawler) { c.robots = r }
}

// WithStatsInterval sets how often progress is logged during Crawl
func WithStatsInterval(d time.Duration) Option {
	return func(c *DefaultCrawler) { c.statsInterval = d }
}

// DefaultCrawler implements the Crawler interface
type DefaultCrawler struct {
	config     *config.CrawlConfig
	policy     *URLPolicy
	httpClient *HTTPClient
	processor  PageProcessor
	pacer      Pacer
	robots     RobotsChecker
	sink       ResultSink
	session    *Session

	crawlDelayed  sync.Once
	statsInterval time.Duration

	stats      CrawlStats
	statsMutex sync.RWMutex

	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// NewCrawler validates cfg and wires the crawl components. An invalid
// configuration, including an unparsable base URL, is the only fatal error.
func NewCrawler(cfg *config.CrawlConfig, opts ...Option) (*DefaultCrawler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	policy, err := NewURLPolicy(cfg.BaseURL, cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	httpClient := NewHTTPClient(cfg.UserAgent, cfg.RequestTimeout)

	c := &DefaultCrawler{
		config:        cfg,
		policy:        policy,
		httpClient:    httpClient,
		session:       NewSession(),
		statsInterval: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.processor == nil {
		c.processor = NewPageProcessor(httpClient, policy)
	}
	if c.pacer == nil {
		c.pacer = NewPacer(cfg.Pacing, cfg.DelayDuration())
	}
	if !cfg.RespectRobots {
		c.robots = nil
	} else if c.robots == nil {
		c.robots = NewRobotsParser(httpClient)
	}

	return c, nil
}

// Crawl runs the whole crawl from the base URL at depth 0. The error is
// non-nil only when ctx ended the crawl early; the partial results are
// returned either way.
func (c *DefaultCrawler) Crawl(ctx context.Context) (map[string]*PageResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancelMu.Lock()
	c.cancel = cancel
	c.cancelMu.Unlock()
	defer cancel()

	c.statsMutex.Lock()
	c.stats.StartTime = time.Now()
	c.statsMutex.Unlock()

	slog.Info("Starting crawl", "base_url", c.config.BaseURL, "max_depth", c.config.MaxDepth, "delay", c.config.Delay)

	reporterDone := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.statsReporter(reporterDone)
	}()

	results := c.ScrapeRecursive(ctx, c.config.BaseURL, 0)

	close(reporterDone)
	wg.Wait()

	stats := c.GetStats()
	if err := ctx.Err(); err != nil {
		slog.Warn("Crawl interrupted", "pages", len(results), "errors", stats.ErrorCount, "duration", stats.Duration)
		return results, err
	}

	slog.Info("Crawl completed", "pages", len(results), "errors", stats.ErrorCount, "duration", stats.Duration)
	return results, nil
}

// ScrapeRecursive crawls depth first from startURL, which is taken to be at
// depth. Children are only followed while their depth stays within
// MaxDepth. It returns a snapshot of every result recorded so far.
func (c *DefaultCrawler) ScrapeRecursive(ctx context.Context, startURL string, depth int) map[string]*PageResult {
	c.applyRobotsCrawlDelay(ctx)

	stack := []frontierItem{{url: startURL, depth: depth}}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			break
		}

		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if item.depth > c.config.MaxDepth || c.session.Visited(item.url) {
			continue
		}

		result, ok := c.scrapePage(ctx, item.url, item.depth)
		if !ok || item.depth >= c.config.MaxDepth {
			continue
		}

		// Push in reverse so links are visited in extractor order
		for i := len(result.Links) - 1; i >= 0; i-- {
			link := result.Links[i]
			if !c.session.Visited(link) {
				stack = append(stack, frontierItem{url: link, depth: item.depth + 1})
			}
		}
	}

	return c.session.Results()
}

// ScrapePage fetches and records a single URL as a depth 0 page. It is a
// no-op returning (nil, false) when url has already been visited. Failures
// never escape: they are recorded as error results. Use ScrapePageAt when
// url was reached through links.
func (c *DefaultCrawler) ScrapePage(ctx context.Context, url string) (*PageResult, bool) {
	return c.scrapePage(ctx, url, 0)
}

// ScrapePageAt is ScrapePage recording the result at depth
func (c *DefaultCrawler) ScrapePageAt(ctx context.Context, url string, depth int) (*PageResult, bool) {
	return c.scrapePage(ctx, url, depth)
}

func (c *DefaultCrawler) scrapePage(ctx context.Context, url string, depth int) (*PageResult, bool) {
	if c.session.Visited(url) {
		return nil, false
	}

	if !c.robotsAllowed(ctx, url) {
		return nil, false
	}

	if err := c.pacer.Wait(ctx); err != nil {
		return nil, false
	}

	if !c.session.MarkVisited(url) {
		return nil, false
	}

	slog.Info("Scraping", "url", url, "depth", depth)

	result, err := c.processor.Process(ctx, url)
	if err != nil {
		slog.Error("Error scraping", "url", url, "error", err)
		result = newErrorResult(url, depth, err)
		c.incrementErrorCount()
	} else {
		result.Depth = depth
		c.incrementCrawledCount()
		slog.Debug("Scraped", "url", url, "title", result.Metadata.Title, "links", len(result.Links))
	}

	c.session.Record(result)

	if c.sink != nil {
		if err := c.sink.SavePageResult(result); err != nil {
			slog.Error("Failed to save page result", "url", url, "error", err)
		}
	}

	return result, true
}

// robotsAllowed treats a robots.txt disallow like a scope rejection: the URL
// is marked visited so it is not checked again, and nothing is recorded.
func (c *DefaultCrawler) robotsAllowed(ctx context.Context, url string) bool {
	if c.robots == nil {
		return true
	}

	allowed, err := c.robots.IsAllowed(ctx, url, c.config.UserAgent)
	if err != nil {
		slog.Warn("robots.txt check failed", "url", url, "error", err)
	}
	if allowed {
		return true
	}

	slog.Info("URL disallowed by robots.txt", "url", url)
	c.session.MarkVisited(url)
	c.statsMutex.Lock()
	c.stats.PagesSkipped++
	c.statsMutex.Unlock()
	return false
}

// applyRobotsCrawlDelay raises the pacing delay to the site's Crawl-delay
func (c *DefaultCrawler) applyRobotsCrawlDelay(ctx context.Context) {
	if c.robots == nil {
		return
	}

	c.crawlDelayed.Do(func() {
		adjuster, ok := c.pacer.(delayAdjuster)
		if !ok {
			return
		}

		// Loads and caches robots.txt for the anchor host
		_, _ = c.robots.IsAllowed(ctx, c.config.BaseURL, c.config.UserAgent)

		if delay := c.robots.GetCrawlDelay(c.policy.AnchorHost()); delay > adjuster.Delay() {
			slog.Info("Using robots.txt crawl delay", "delay", delay)
			adjuster.SetDelay(delay)
		}
	})
}

// Results returns the results recorded so far. It is safe to call while a
// crawl is running.
func (c *DefaultCrawler) Results() map[string]*PageResult {
	return c.session.Results()
}

// OrderedResults returns the recorded results in fetch order
func (c *DefaultCrawler) OrderedResults() []*PageResult {
	return c.session.Ordered()
}

// Stop aborts a running crawl after the current page and releases connections
func (c *DefaultCrawler) Stop() error {
	c.cancelMu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancelMu.Unlock()

	c.httpClient.Close()
	return nil
}

// GetStats returns current crawling statistics
func (c *DefaultCrawler) GetStats() CrawlStats {
	c.statsMutex.RLock()
	defer c.statsMutex.RUnlock()

	stats := c.stats
	if !stats.StartTime.IsZero() {
		stats.Duration = time.Since(stats.StartTime)
	}
	return stats
}

// statsReporter periodically logs crawl progress until done is closed
func (c *DefaultCrawler) statsReporter(done <-chan struct{}) {
	if c.statsInterval <= 0 {
		return
	}

	ticker := time.NewTicker(c.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			stats := c.GetStats()
			slog.Info("Crawling stats",
				"crawled", stats.PagesCrawled,
				"errors", stats.ErrorCount,
				"skipped", stats.PagesSkipped,
				"visited", c.session.VisitedCount(),
				"duration", stats.Duration)
		}
	}
}

func (c *DefaultCrawler) incrementCrawledCount() {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()
	c.stats.PagesCrawled++
}

func (c *DefaultCrawler) incrementErrorCount() {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()
	c.stats.ErrorCount++
}
