// Package parser discovers outbound links in raw HTML documents.
// It walks the uncleaned markup so that links inside navigation, header and
// footer chrome are still found even though that chrome is later dropped
// from the page content.
package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link represents a discovered hyperlink
type Link struct {
	URL          string // Absolute URL, fragment removed
	AnchorText   string
	RelAttribute string
}

// LinkExtractor resolves anchors found in a document against its URL
type LinkExtractor struct {
	baseURL        *url.URL
	allowedSchemes []string
}

// NewLinkExtractor creates an extractor for a document fetched from currentURL
func NewLinkExtractor(currentURL string) (*LinkExtractor, error) {
	parsedURL, err := url.Parse(currentURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &LinkExtractor{
		baseURL:        parsedURL,
		allowedSchemes: []string{"https://", "http://"},
	}, nil
}

// ExtractLinks parses document and returns the absolute URLs of its anchors,
// keeping only those accepted by inScope. A nil inScope keeps everything.
// The result is deduplicated and ordered by first appearance.
func ExtractLinks(document []byte, currentURL string, inScope func(string) bool) ([]Link, error) {
	extractor, err := NewLinkExtractor(currentURL)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(document, inScope)
}

// Extract parses document and collects in-scope links
func (p *LinkExtractor) Extract(document []byte, inScope func(string) bool) ([]Link, error) {
	doc, err := html.Parse(bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	c := &collector{
		extractor: p,
		inScope:   inScope,
		seen:      make(map[string]bool),
		links:     []Link{},
	}
	c.traverse(doc)

	return c.links, nil
}

type collector struct {
	extractor *LinkExtractor
	inScope   func(string) bool
	seen      map[string]bool
	links     []Link
}

func (c *collector) traverse(n *html.Node) {
	if n.Type == html.ElementNode && n.Data == "a" {
		c.parseAnchor(n)
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.traverse(child)
	}
}

func (c *collector) parseAnchor(n *html.Node) {
	var href, rel string
	hasHref := false

	for _, attr := range n.Attr {
		switch attr.Key {
		case "href":
			href = strings.TrimSpace(attr.Val)
			hasHref = true
		case "rel":
			rel = attr.Val
		}
	}

	if !hasHref || strings.HasPrefix(href, "#") {
		return
	}

	if !c.extractor.isAllowedScheme(href) {
		return
	}

	absURL, err := c.extractor.resolveURL(href)
	if err != nil {
		return
	}

	if !c.extractor.isAllowedScheme(absURL) {
		return
	}

	if c.seen[absURL] {
		return
	}
	if c.inScope != nil && !c.inScope(absURL) {
		return
	}
	c.seen[absURL] = true

	c.links = append(c.links, Link{
		URL:          absURL,
		AnchorText:   strings.TrimSpace(extractText(n)),
		RelAttribute: rel,
	})
}

// resolveURL converts href to an absolute URL without its fragment
func (p *LinkExtractor) resolveURL(href string) (string, error) {
	u, err := url.Parse(href)
	if err != nil {
		return "", err
	}

	resolved := p.baseURL.ResolveReference(u)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String(), nil
}

// extractText recursively extracts text content from a node
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text := extractText(c); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " ")
}

// isAllowedScheme rejects mailto:, tel:, javascript: and other non-web references
func (p *LinkExtractor) isAllowedScheme(href string) bool {
	// A scheme is whatever precedes the first ':' that comes before any '/', '?' or '#'
	idx := strings.IndexAny(href, ":/?#")
	if idx <= 0 || href[idx] != ':' {
		// Relative references inherit the base URL's scheme
		return true
	}

	scheme := strings.ToLower(href[:idx]) + "://"
	for _, allowed := range p.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}
