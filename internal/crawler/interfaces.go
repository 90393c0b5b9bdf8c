package crawler

import (
	"context"
	"time"
)

// Fetcher retrieves raw documents
type Fetcher interface {
	Get(ctx context.Context, url string) (*HTTPResponse, error)
}

// PageProcessor fetches and converts a single page. It returns either a
// success PageResult or a *FetchError / *ProcessError; it never records
// anything itself.
type PageProcessor interface {
	Process(ctx context.Context, url string) (*PageResult, error)
}

// ResultSink receives every recorded PageResult, in recording order
type ResultSink interface {
	SavePageResult(result *PageResult) error
}

// Pacer spaces consecutive fetches. Wait is called before every fetch,
// including the first, and the pause comes before a fetch rather than after
// it, so there is no trailing delay once the crawl ends.
type Pacer interface {
	Wait(ctx context.Context) error
}

// RobotsChecker decides whether robots.txt permits fetching a URL
type RobotsChecker interface {
	IsAllowed(ctx context.Context, url string, userAgent string) (bool, error)
	GetCrawlDelay(domain string) time.Duration
}

// Crawler is the crawl controller
type Crawler interface {
	Crawl(ctx context.Context) (map[string]*PageResult, error)
	Results() map[string]*PageResult
	Stop() error
	GetStats() CrawlStats
}
