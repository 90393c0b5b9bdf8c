// Package export writes crawl results to a directory of Markdown files
// with an index report.
package export

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/masahif/sitescribe/internal/crawler"
)

// IndexFile is the name of the report written next to the page files
const IndexFile = "index.md"

// Summary describes what an export wrote
type Summary struct {
	IndexPath string
	Files     map[string]string // URL -> file path
	Pages     int
	Errors    int
}

// Exporter writes one Markdown file per result
type Exporter struct {
	outputDir string
	now       func() time.Time
}

// NewExporter creates an exporter writing into outputDir
func NewExporter(outputDir string) *Exporter {
	return &Exporter{outputDir: outputDir, now: time.Now}
}

// Export writes every result's content to <output_dir>/<slug>.md and an
// index.md report listing them in the given order.
func (e *Exporter) Export(results []*crawler.PageResult) (*Summary, error) {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := &Summary{
		IndexPath: filepath.Join(e.outputDir, IndexFile),
		Files:     make(map[string]string, len(results)),
	}

	used := map[string]int{strings.TrimSuffix(IndexFile, ".md"): 1}
	names := make([]string, 0, len(results))

	for _, result := range results {
		name := uniqueName(Slug(result.URL), used) + ".md"
		path := filepath.Join(e.outputDir, name)

		if err := os.WriteFile(path, []byte(result.Content), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		slog.Debug("Exported page", "url", result.URL, "file", path)

		summary.Files[result.URL] = path
		names = append(names, name)
		summary.Pages++
		if result.IsError() {
			summary.Errors++
		}
	}

	if err := e.writeIndex(summary, results, names); err != nil {
		return nil, err
	}

	slog.Info("Export completed", "dir", e.outputDir, "pages", summary.Pages, "errors", summary.Errors)
	return summary, nil
}

func (e *Exporter) writeIndex(summary *Summary, results []*crawler.PageResult, names []string) error {
	var buf bytes.Buffer
	if err := e.renderIndex(&buf, summary, results, names); err != nil {
		return fmt.Errorf("failed to render index: %w", err)
	}

	if err := os.WriteFile(summary.IndexPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

// renderIndex writes the index report to w
func (e *Exporter) renderIndex(w io.Writer, summary *Summary, results []*crawler.PageResult, names []string) error {
	md := markdown.NewMarkdown(w)

	md.H1("Crawl Index")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", e.now().Format("2006-01-02 15:04:05")},
			{"Pages", strconv.Itoa(summary.Pages)},
			{"Successful", strconv.Itoa(summary.Pages - summary.Errors)},
			{"Errors", strconv.Itoa(summary.Errors)},
		},
	})
	md.PlainText("")

	if summary.Errors > 0 {
		md.Warningf("%d page(s) could not be scraped.", summary.Errors)
		md.PlainText("")
	}

	md.H2("Pages")
	md.PlainText("")

	if len(results) == 0 {
		md.PlainText("No pages were crawled.")
		md.PlainText("")
	} else {
		rows := make([][]string, 0, len(results))
		for i, result := range results {
			rows = append(rows, []string{
				cell(result.Metadata.Title),
				cell(result.URL),
				strconv.Itoa(result.Depth),
				string(result.Status),
				"[" + names[i] + "](" + names[i] + ")",
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Title", "URL", "Depth", "Status", "File"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	return md.Build()
}

// Slug derives a file name from host and path, with query appended.
// Characters outside [A-Za-z0-9._-] become underscores.
func Slug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return sanitize(rawURL)
	}

	slug := u.Host
	if path := strings.Trim(u.Path, "/"); path != "" {
		slug += "_" + path
	}
	if u.RawQuery != "" {
		slug += "_" + u.RawQuery
	}
	return sanitize(slug)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_.")
	if out == "" {
		return "page"
	}
	return out
}

func uniqueName(slug string, used map[string]int) string {
	used[slug]++
	if n := used[slug]; n > 1 {
		candidate := slug + "-" + strconv.Itoa(n)
		used[candidate]++
		return candidate
	}
	return slug
}

// cell keeps a value on one table row
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
