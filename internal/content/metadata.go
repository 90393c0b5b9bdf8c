// Package content turns fetched HTML into a normalized Markdown document.
//
// The pipeline is Parse -> Clean -> ExtractMetadata -> Normalize. Every
// cleaning step is idempotent and can be run on its own.
package content

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTitle is used when a page has no <title> element
const DefaultTitle = "Untitled"

// Metadata describes a page
type Metadata struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	MainHeading string    `json:"main_heading"`
	URL         string    `json:"url"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// Parse builds a goquery document from raw markup
func Parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// ExtractMetadata pulls the title, description and first h1/h2 from doc.
// Absent fields fall back to "Untitled" for the title and "" otherwise.
func ExtractMetadata(doc *goquery.Document, url string) Metadata {
	return Metadata{
		Title:       extractTitle(doc),
		Description: extractDescription(doc),
		MainHeading: extractMainHeading(doc),
		URL:         url,
		ScrapedAt:   time.Now(),
	}
}

func extractTitle(doc *goquery.Document) string {
	title := doc.Find("title").First()
	if title.Length() == 0 {
		return DefaultTitle
	}
	return collapseSpace(title.Text())
}

func extractDescription(doc *goquery.Document) string {
	desc, _ := doc.Find("meta[name='description']").First().Attr("content")
	return desc
}

// extractMainHeading returns the first h1 or h2 in document order
func extractMainHeading(doc *goquery.Document) string {
	heading := doc.Find("h1, h2").First()
	if heading.Length() == 0 {
		return ""
	}
	return collapseSpace(heading.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
