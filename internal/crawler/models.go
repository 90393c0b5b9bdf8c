package crawler

import (
	"errors"
	"time"

	"github.com/masahif/sitescribe/internal/content"
)

// Status is the outcome of scraping a page
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrorTitle is the metadata title of an error page
const ErrorTitle = "Error"

// PageResult is the recorded outcome for one fetched URL.
// It is not modified after it has been recorded.
type PageResult struct {
	URL      string           `json:"url"`
	Status   Status           `json:"status"`
	Depth    int              `json:"depth"`
	Metadata content.Metadata `json:"metadata"`
	Content  string           `json:"content"` // Markdown document, or an error document
	Links    []string         `json:"links"`   // In-scope absolute URLs, empty on error

	// Fetch details, zero when the request never produced a response
	StatusCode   int           `json:"status_code,omitempty"`
	ContentType  string        `json:"content_type,omitempty"`
	FinalURL     string        `json:"final_url,omitempty"` // After redirects
	TTFB         time.Duration `json:"ttfb,omitempty"`
	DownloadTime time.Duration `json:"download_time,omitempty"`
	DNSLookup    time.Duration `json:"dns_lookup,omitempty"`
	TCPConnect   time.Duration `json:"tcp_connect,omitempty"`
	TLSHandshake time.Duration `json:"tls_handshake,omitempty"`

	// Parallel to Links
	AnchorTexts []string `json:"-"`
	LinkRels    []string `json:"-"`

	Error string `json:"error,omitempty"`
}

// IsError reports whether the page failed to fetch or process
func (r *PageResult) IsError() bool {
	return r.Status == StatusError
}

// newErrorResult builds the stand-in recorded for a failed page
func newErrorResult(url string, depth int, err error) *PageResult {
	result := &PageResult{
		URL:    url,
		Status: StatusError,
		Depth:  depth,
		Metadata: content.Metadata{
			Title:     ErrorTitle,
			URL:       url,
			ScrapedAt: time.Now(),
		},
		Content: "# Error scraping " + url + "\n\nError: " + err.Error(),
		Links:   []string{},
		Error:   err.Error(),
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		result.StatusCode = fetchErr.StatusCode
	}
	return result
}

// CrawlStats represents crawling statistics
type CrawlStats struct {
	PagesCrawled int
	ErrorCount   int
	PagesSkipped int // Rejected by robots.txt
	StartTime    time.Time
	Duration     time.Duration
}
