package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/masahif/sitescribe/internal/content"
	"github.com/masahif/sitescribe/internal/parser"
)

// DefaultPageProcessor implements the PageProcessor interface
type DefaultPageProcessor struct {
	fetcher    Fetcher
	policy     *URLPolicy
	normalizer *content.Normalizer
}

// NewPageProcessor creates a processor that keeps only links accepted by policy
func NewPageProcessor(fetcher Fetcher, policy *URLPolicy) *DefaultPageProcessor {
	return &DefaultPageProcessor{
		fetcher:    fetcher,
		policy:     policy,
		normalizer: content.NewNormalizer(),
	}
}

// Process fetches url and converts it. Links are discovered on the raw
// markup; metadata and content come from the cleaned document.
func (p *DefaultPageProcessor) Process(ctx context.Context, url string) (*PageResult, error) {
	resp, err := p.fetcher.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	contentType := detectContentType(resp)
	if !isTextual(contentType) {
		return nil, &ProcessError{URL: url, Stage: "content-type", Cause: fmt.Errorf("%w: %s", ErrUnsupportedContent, contentType)}
	}

	links, err := parser.ExtractLinks(resp.Body, url, p.policy.IsInScope)
	if err != nil {
		return nil, &ProcessError{URL: url, Stage: "links", Cause: err}
	}
	slog.Debug("Found links", "url", url, "links_count", len(links))

	doc, err := content.Parse(resp.Body)
	if err != nil {
		return nil, &ProcessError{URL: url, Stage: "parse", Cause: err}
	}
	content.Clean(doc)

	meta := content.ExtractMetadata(doc, url)
	markdown := p.normalizer.Normalize(doc, meta)

	result := &PageResult{
		URL:          url,
		Status:       StatusSuccess,
		Metadata:     meta,
		Content:      markdown,
		Links:        make([]string, 0, len(links)),
		AnchorTexts:  make([]string, 0, len(links)),
		LinkRels:     make([]string, 0, len(links)),
		StatusCode:   resp.StatusCode,
		ContentType:  contentType,
		FinalURL:     resp.FinalURL,
		TTFB:         resp.Metrics.TTFB,
		DownloadTime: resp.Metrics.DownloadTime,
		DNSLookup:    resp.Metrics.DNSLookup,
		TCPConnect:   resp.Metrics.TCPConnect,
		TLSHandshake: resp.Metrics.TLSHandshake,
	}
	for _, link := range links {
		result.Links = append(result.Links, link.URL)
		result.AnchorTexts = append(result.AnchorTexts, link.AnchorText)
		result.LinkRels = append(result.LinkRels, link.RelAttribute)
	}
	if resp.FinalURL != "" && resp.FinalURL != url {
		slog.Debug("Followed redirect", "url", url, "final_url", resp.FinalURL)
	}

	return result, nil
}

// detectContentType returns the media type from the header, sniffing the body when absent
func detectContentType(resp *HTTPResponse) string {
	ct := resp.ContentType
	if ct == "" {
		ct = http.DetectContentType(resp.Body)
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0]))
	}
	return mediaType
}

func isTextual(mediaType string) bool {
	return strings.HasPrefix(mediaType, "text/") || mediaType == "application/xhtml+xml"
}
