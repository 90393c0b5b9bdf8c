package content

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ChromeElements are stripped before conversion and excluded again by the converter
var ChromeElements = []string{"script", "style", "nav", "footer", "header"}

// HeaderTimeLayout formats the scrape time in the header block
const HeaderTimeLayout = "2006-01-02 15:04:05"

// Normalizer converts cleaned documents to Markdown
type Normalizer struct {
	converter *md.Converter
}

// NewNormalizer creates a normalizer using ATX headings and "-" bullets
func NewNormalizer() *Normalizer {
	converter := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		BulletListMarker: "-",
	})
	converter.Remove(ChromeElements...)

	return &Normalizer{converter: converter}
}

// Clean strips chrome, comments and empty paragraphs from doc in place
func Clean(doc *goquery.Document) *goquery.Document {
	RemoveChrome(doc)
	RemoveComments(doc)
	RemoveEmptyParagraphs(doc)
	return doc
}

// RemoveChrome removes script, style, nav, footer and header subtrees
func RemoveChrome(doc *goquery.Document) {
	doc.Find(strings.Join(ChromeElements, ", ")).Remove()
}

// RemoveComments removes every comment node
func RemoveComments(doc *goquery.Document) {
	var comments []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.CommentNode {
			comments = append(comments, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	for _, c := range comments {
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
	}
}

// RemoveEmptyParagraphs removes <p> elements with no visible text
func RemoveEmptyParagraphs(doc *goquery.Document) {
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "" {
			s.Remove()
		}
	})
}

// Header renders the metadata block that starts every page document
func Header(meta Metadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", meta.Title)
	fmt.Fprintf(&b, "**URL:** %s\n", meta.URL)
	fmt.Fprintf(&b, "**Description:** %s\n", meta.Description)
	fmt.Fprintf(&b, "**Main Heading:** %s\n", meta.MainHeading)
	fmt.Fprintf(&b, "**Scraped:** %s\n\n", meta.ScrapedAt.Local().Format(HeaderTimeLayout))
	b.WriteString("---\n\n")
	return b.String()
}

// ContentRegion selects <main>, else <body>, else the whole document
func ContentRegion(doc *goquery.Document) *goquery.Selection {
	if main := doc.Find("main").First(); main.Length() > 0 {
		return main
	}
	if body := doc.Find("body").First(); body.Length() > 0 {
		return body
	}
	return doc.Selection
}

// Normalize renders the header block followed by the Markdown body of doc.
// doc is expected to have been through Clean.
func (n *Normalizer) Normalize(doc *goquery.Document, meta Metadata) string {
	return Header(meta) + n.converter.Convert(ContentRegion(doc))
}
