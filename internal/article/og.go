// Package article builds link-card posts from a target page's Open Graph
// metadata.
package article

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// Metadata is the Open Graph data extracted from a page. Absent tags leave
// empty strings.
type Metadata struct {
	Title       string
	Description string
	Image       string
	Published   string
}

// Empty reports whether the page had neither a title nor a description. An
// empty result means "nothing to post", not an error.
func (m *Metadata) Empty() bool {
	return m.Title == "" && m.Description == ""
}

// FetchMetadata downloads the page at pageURL and extracts its Open Graph tags.
func FetchMetadata(ctx context.Context, client *http.Client, pageURL string) (*Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page request failed with status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	meta := &Metadata{}
	extractMeta(doc, meta)
	return meta, nil
}

// extractMeta walks the document collecting the meta tags this tool reads.
// Publishers are inconsistent about property vs name attributes, so both are
// accepted.
func extractMeta(n *html.Node, meta *Metadata) {
	if n.Type == html.ElementNode && n.Data == "meta" {
		var key, content string
		for _, attr := range n.Attr {
			switch attr.Key {
			case "property", "name":
				key = attr.Val
			case "content":
				content = attr.Val
			}
		}
		switch key {
		case "og:title":
			meta.Title = strings.TrimSpace(content)
		case "og:description":
			meta.Description = strings.TrimSpace(content)
		case "og:image":
			meta.Image = strings.TrimSpace(content)
		case "article:published_time":
			meta.Published = strings.TrimSpace(content)
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		extractMeta(child, meta)
	}
}
