package crawler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// RobotsParser fetches robots.txt once per host and checks paths against it
type RobotsParser struct {
	fetcher Fetcher
	rules   map[string]*RobotRules
	mu      sync.RWMutex
}

// RobotRules contains the parsed rules for a domain
type RobotRules struct {
	Disallowed []string
	Allowed    []string
	CrawlDelay time.Duration
	Sitemap    []string
}

// NewRobotsParser creates a new robots.txt parser
func NewRobotsParser(fetcher Fetcher) *RobotsParser {
	return &RobotsParser{
		fetcher: fetcher,
		rules:   make(map[string]*RobotRules),
	}
}

// IsAllowed checks if a URL is allowed by robots.txt for userAgent
func (r *RobotsParser) IsAllowed(ctx context.Context, urlStr string, userAgent string) (bool, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false, fmt.Errorf("invalid URL: %w", err)
	}

	domain := parsedURL.Host
	rules, err := r.getRules(ctx, domain, parsedURL.Scheme, userAgent)
	if err != nil {
		// If we can't fetch robots.txt, assume allowed
		return true, err
	}

	path := parsedURL.Path
	if path == "" {
		path = "/"
	}

	// Check disallow rules first
	for _, pattern := range rules.Disallowed {
		if matchesPattern(path, pattern) {
			// Check if there's a more specific allow rule
			for _, allowPattern := range rules.Allowed {
				if matchesPattern(path, allowPattern) && len(allowPattern) > len(pattern) {
					return true, nil
				}
			}
			return false, nil
		}
	}

	return true, nil
}

// GetCrawlDelay returns the crawl delay for a domain
func (r *RobotsParser) GetCrawlDelay(domain string) time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rules, ok := r.rules[domain]; ok {
		return rules.CrawlDelay
	}

	return 0
}

// getRules fetches and parses robots.txt for a domain
func (r *RobotsParser) getRules(ctx context.Context, domain, scheme, userAgent string) (*RobotRules, error) {
	r.mu.RLock()
	rules, exists := r.rules[domain]
	r.mu.RUnlock()

	if exists {
		return rules, nil
	}

	// Fetch robots.txt
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, domain)
	resp, err := r.fetcher.Get(ctx, robotsURL)
	var fetchErr *FetchError
	switch {
	case err == nil:
		rules = parseRobotsTxt(string(resp.Body), userAgent)
	case errors.As(err, &fetchErr) && (fetchErr.StatusCode == http.StatusNotFound || fetchErr.StatusCode == http.StatusGone):
		// No robots.txt means everything is allowed
		rules = &RobotRules{
			Disallowed: []string{},
			Allowed:    []string{},
		}
	default:
		return nil, fmt.Errorf("robots.txt for %s: %w", domain, err)
	}

	r.mu.Lock()
	r.rules[domain] = rules
	r.mu.Unlock()

	return rules, nil
}

// parseRobotsTxt parses robots.txt content, keeping the groups that apply
// to "*" or to the product token of userAgent
func parseRobotsTxt(content, userAgent string) *RobotRules {
	rules := &RobotRules{
		Disallowed: []string{},
		Allowed:    []string{},
		Sitemap:    []string{},
	}

	product := strings.ToLower(userAgent)
	if i := strings.IndexAny(product, "/ "); i >= 0 {
		product = product[:i]
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	inUserAgent := false
	currentUserAgent := ""

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse directive
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		directive := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])

		switch directive {
		case "user-agent":
			currentUserAgent = strings.ToLower(value)
			inUserAgent = currentUserAgent == "*" || (product != "" && strings.Contains(currentUserAgent, product))

		case "disallow":
			if inUserAgent && value != "" {
				rules.Disallowed = append(rules.Disallowed, value)
			}

		case "allow":
			if inUserAgent && value != "" {
				rules.Allowed = append(rules.Allowed, value)
			}

		case "crawl-delay":
			if inUserAgent {
				if delay, err := time.ParseDuration(value + "s"); err == nil {
					rules.CrawlDelay = delay
				}
			}

		case "sitemap":
			rules.Sitemap = append(rules.Sitemap, value)
		}
	}

	return rules
}

// matchesPattern checks if a path matches a robots.txt pattern
func matchesPattern(path, pattern string) bool {
	// Handle wildcard
	if strings.Contains(pattern, "*") {
		// Convert pattern to regex-like matching
		pattern = strings.ReplaceAll(pattern, "*", ".*")
		// For simplicity, we'll do prefix matching with wildcards
		parts := strings.Split(pattern, ".*")
		if len(parts) == 1 {
			return strings.HasPrefix(path, parts[0])
		}

		// Check if path starts with first part
		if !strings.HasPrefix(path, parts[0]) {
			return false
		}

		// Check if path contains subsequent parts in order
		remaining := path[len(parts[0]):]
		for i := 1; i < len(parts); i++ {
			if parts[i] == "" {
				continue
			}
			idx := strings.Index(remaining, parts[i])
			if idx == -1 {
				return false
			}
			remaining = remaining[idx+len(parts[i]):]
		}

		return true
	}

	// Handle $ (end of URL)
	if strings.HasSuffix(pattern, "$") {
		pattern = strings.TrimSuffix(pattern, "$")
		return path == pattern
	}

	// Default: prefix matching
	return strings.HasPrefix(path, pattern)
}
