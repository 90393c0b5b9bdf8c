package crawler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func init() {
	// Disable slog output during testing
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	slog.SetDefault(logger)
}

func newTestProcessor(t *testing.T, baseURL string) *DefaultPageProcessor {
	t.Helper()

	policy, err := NewURLPolicy(baseURL, nil, nil)
	if err != nil {
		t.Fatalf("Failed to create URL policy: %v", err)
	}

	httpClient := NewHTTPClient("Test-Crawler/1.0", 30*time.Second)
	t.Cleanup(httpClient.Close)

	return NewPageProcessor(httpClient, policy)
}

func TestPageProcessor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/test-page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`
<!DOCTYPE html>
<html>
<head>
	<title>Test Page</title>
	<meta name="description" content="Test description">
</head>
<body>
	<nav><a href="/from-nav">Menu</a></nav>
	<main>
		<h1>Welcome</h1>
		<p>Body text.</p>
		<a href="/internal-link" rel="nofollow">Internal Link</a>
		<a href="https://external.com/page">External Link</a>
		<a href="/report.pdf">Report</a>
	</main>
	<script>var tracking = true;</script>
</body>
</html>
			`))

		case "/404":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("Not Found"))

		case "/non-html":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))

		case "/no-type":
			w.Header()["Content-Type"] = nil
			_, _ = w.Write([]byte(`<html><head><title>Sniffed</title></head><body><p>x</p></body></html>`))

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	processor := newTestProcessor(t, server.URL)
	ctx := context.Background()

	t.Run("ProcessHTMLPage", func(t *testing.T) {
		result, err := processor.Process(ctx, server.URL+"/test-page")
		if err != nil {
			t.Fatalf("Failed to process page: %v", err)
		}

		if result.Status != StatusSuccess {
			t.Errorf("Expected status success, got %s", result.Status)
		}
		if result.StatusCode != 200 {
			t.Errorf("Expected status code 200, got %d", result.StatusCode)
		}
		if result.ContentType != "text/html" {
			t.Errorf("Expected content type text/html, got %s", result.ContentType)
		}
		if result.Metadata.Title != "Test Page" {
			t.Errorf("Expected title 'Test Page', got '%s'", result.Metadata.Title)
		}
		if result.Metadata.Description != "Test description" {
			t.Errorf("Expected description 'Test description', got '%s'", result.Metadata.Description)
		}
		if result.Metadata.MainHeading != "Welcome" {
			t.Errorf("Expected main heading 'Welcome', got '%s'", result.Metadata.MainHeading)
		}

		// Links come from the raw markup, so the nav link is kept
		expected := []string{server.URL + "/from-nav", server.URL + "/internal-link"}
		if len(result.Links) != len(expected) {
			t.Fatalf("Expected links %v, got %v", expected, result.Links)
		}
		for i, link := range expected {
			if result.Links[i] != link {
				t.Errorf("Link %d: expected %s, got %s", i, link, result.Links[i])
			}
		}
		if len(result.AnchorTexts) != len(result.Links) {
			t.Errorf("Expected %d anchor texts, got %d", len(result.Links), len(result.AnchorTexts))
		}
		if len(result.LinkRels) != 2 || result.LinkRels[0] != "" || result.LinkRels[1] != "nofollow" {
			t.Errorf("Unexpected rel attributes: %v", result.LinkRels)
		}
		if result.FinalURL != server.URL+"/test-page" {
			t.Errorf("Expected final URL %s, got %s", server.URL+"/test-page", result.FinalURL)
		}

		if !strings.HasPrefix(result.Content, "# Test Page\n\n**URL:** "+server.URL+"/test-page\n") {
			t.Errorf("Unexpected content header: %q", result.Content)
		}
		if strings.Contains(result.Content, "tracking") {
			t.Error("Script content should be removed")
		}
		if strings.Contains(result.Content, "Menu") {
			t.Error("Navigation should be removed from content")
		}
		if !strings.Contains(result.Content, "Body text.") {
			t.Error("Main content missing")
		}
	})

	t.Run("Process404Page", func(t *testing.T) {
		_, err := processor.Process(ctx, server.URL+"/404")
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("Expected *FetchError, got %v", err)
		}
		if fetchErr.StatusCode != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", fetchErr.StatusCode)
		}
	})

	t.Run("ProcessNonHTMLPage", func(t *testing.T) {
		_, err := processor.Process(ctx, server.URL+"/non-html")
		var procErr *ProcessError
		if !errors.As(err, &procErr) {
			t.Fatalf("Expected *ProcessError, got %v", err)
		}
		if !errors.Is(err, ErrUnsupportedContent) {
			t.Errorf("Expected ErrUnsupportedContent, got %v", err)
		}
	})

	t.Run("ProcessSniffedContentType", func(t *testing.T) {
		result, err := processor.Process(ctx, server.URL+"/no-type")
		if err != nil {
			t.Fatalf("Failed to process page: %v", err)
		}
		if result.Metadata.Title != "Sniffed" {
			t.Errorf("Expected title 'Sniffed', got '%s'", result.Metadata.Title)
		}
	})
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		body     string
		expected string
	}{
		{"header with charset", "text/html; charset=utf-8", "", "text/html"},
		{"upper case header", "Text/HTML", "", "text/html"},
		{"xhtml", "application/xhtml+xml", "", "application/xhtml+xml"},
		{"sniffed html", "", "<!DOCTYPE html><html></html>", "text/html"},
		{"sniffed binary", "", "\x89PNG\r\n\x1a\n", "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectContentType(&HTTPResponse{ContentType: tt.header, Body: []byte(tt.body)})
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestIsTextual(t *testing.T) {
	tests := map[string]bool{
		"text/html":             true,
		"text/plain":            true,
		"application/xhtml+xml": true,
		"application/json":      false,
		"image/png":             false,
	}

	for mediaType, expected := range tests {
		if got := isTextual(mediaType); got != expected {
			t.Errorf("isTextual(%q) = %v, want %v", mediaType, got, expected)
		}
	}
}
