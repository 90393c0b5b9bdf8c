package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// SkipExtensions are non-content file types that are never crawled
var SkipExtensions = []string{".pdf", ".jpg", ".jpeg", ".png", ".gif", ".css", ".js", ".xml"}

// SkipPatterns are sensitive path fragments that are never crawled
var SkipPatterns = []string{"/api/", "/admin/", "/login", "/logout", "/register"}

// URLPolicy decides whether a discovered URL belongs to the crawl.
// It holds no state beyond the anchor host and the compiled patterns.
type URLPolicy struct {
	anchorHost string
	include    []*regexp.Regexp
	exclude    []*regexp.Regexp
}

// NewURLPolicy creates a policy anchored at baseURL. Include and exclude
// are optional regular expressions applied after the built-in rules.
func NewURLPolicy(baseURL string, include, exclude []string) (*URLPolicy, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}

	policy := &URLPolicy{anchorHost: u.Host}

	if policy.include, err = compilePatterns(include); err != nil {
		return nil, err
	}
	if policy.exclude, err = compilePatterns(exclude); err != nil {
		return nil, err
	}

	return policy, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// AnchorHost returns the host every in-scope URL must have
func (p *URLPolicy) AnchorHost() string {
	return p.anchorHost
}

// IsInScope reports whether candidate may be crawled
func (p *URLPolicy) IsInScope(candidate string) bool {
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Host == "" {
		return false
	}

	// Exact host only: no subdomains, no other sites
	if parsed.Host != p.anchorHost {
		return false
	}

	lower := strings.ToLower(candidate)
	for _, ext := range SkipExtensions {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}

	for _, pattern := range SkipPatterns {
		if strings.Contains(candidate, pattern) {
			return false
		}
	}

	if len(p.include) > 0 {
		matched := false
		for _, re := range p.include {
			if re.MatchString(candidate) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, re := range p.exclude {
		if re.MatchString(candidate) {
			return false
		}
	}

	return true
}
