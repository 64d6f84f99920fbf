package sources

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nwatts/gbdl/pkg/data"
	"github.com/nwatts/gbdl/pkg/utils"
)

// GoogleBooks scrapes the Google Books preview viewer.
//
// Two URL styles are accepted:
//
//	old: https://books.google.com/books?id=$id&$args
//	new: https://www.google.com/books/edition/$title/$id?$args
type GoogleBooks struct {
	client  *utils.Client
	baseURL string
}

// NewGoogleBooks creates a source backed by the given HTTP client.
func NewGoogleBooks(client *utils.Client) *GoogleBooks {
	return &GoogleBooks{client: client, baseURL: "https://books.google.com"}
}

type pageJSON struct {
	PID string `json:"pid"`
	Src string `json:"src"`
}

type issueJSON struct {
	Page []pageJSON `json:"page"`
}

// ResolveID parses the issue ID out of either URL style.
func (g *GoogleBooks) ResolveID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if id := u.Query().Get("id"); id != "" {
		return id, nil
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	id := segments[len(segments)-1]
	if id == "" {
		return "", fmt.Errorf("no volume id in URL %q", rawURL)
	}
	return id, nil
}

func (g *GoogleBooks) issueURL(id string) string {
	return fmt.Sprintf("%s/books?id=%s", g.baseURL, id)
}

func (g *GoogleBooks) pageListingURL(id, firstPID, pid string) string {
	return fmt.Sprintf("%s&lpg=%s&pg=%s&jscmd=click3", g.issueURL(id), firstPID, pid)
}

// GetIssue fetches and parses an issue's informational page.
func (g *GoogleBooks) GetIssue(id string) (*data.Issue, map[string]string, error) {
	doc, err := g.client.GetDocument(g.issueURL(id))
	if err != nil {
		return nil, nil, err
	}

	issue, err := parseIssue(id, g.issueURL(id), doc)
	if err != nil {
		return nil, nil, err
	}
	return issue, parseTOC(doc), nil
}

// parseIssue extracts issue metadata from the summary block of an
// informational page.
func parseIssue(id, url string, doc *goquery.Document) (*data.Issue, error) {
	summary := doc.Find("#summary_content_table").First()
	if summary.Length() == 0 {
		return nil, fmt.Errorf("page for %s has no metadata summary", id)
	}

	issue := &data.Issue{
		ID:          id,
		URL:         url,
		SeriesName:  strings.TrimSpace(summary.Find(".booktitle").First().Text()),
		Description: strings.TrimSpace(summary.Find("#synopsistext").First().Text()),
	}

	// Periodical issues carry a positional metadata block: date, page
	// count, volume, ISSN, publisher.
	fields := textNodes(summary.Find("#metadata").First())
	for i, field := range fields {
		switch i {
		case 0:
			issue.PublishDate = field
		case 1:
			issue.Length = parseLength(field)
		case 2:
			issue.Volume = field
		case 3:
			issue.ISSN = field
		case 4:
			issue.Publisher = field
		}
	}

	// Books use labeled metadata rows instead.
	doc.Find(".metadata_row").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find(".metadata_label").First().Text())
		value := strings.TrimSpace(row.Find(".metadata_value span").First().Text())
		if value == "" {
			return
		}
		switch label {
		case "Author":
			issue.Author = value
		case "Publisher":
			issue.Publisher = value
		case "Original from":
			issue.OrigFrom = value
		case "Digitized":
			issue.DateDigitized = value
		case "Length":
			issue.Length = parseLength(value)
		}
	})

	preview := doc.Find("#preview-link span").First().Text()
	switch {
	case strings.Contains(preview, "magazine"):
		issue.Type = data.Magazine
	case strings.Contains(preview, "newspaper"):
		issue.Type = data.Newspaper
	default:
		issue.Type = data.Book
	}

	return issue, nil
}

// parseTOC builds a pid → title lookup from the table of contents
// entries on an informational page. The target pid sits in the entry
// link's pg query parameter.
func parseTOC(doc *goquery.Document) map[string]string {
	toc := make(map[string]string)
	doc.Find("div.toc_entry").Each(func(_ int, entry *goquery.Selection) {
		title := strings.TrimSpace(entry.Text())
		href, ok := entry.Find("a").First().Attr("href")
		if title == "" || !ok {
			return
		}
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		if pid := u.Query().Get("pg"); pid != "" {
			toc[pid] = title
		}
	})
	return toc
}

// GetPages fetches the initial page listing. The listing names every
// available page in reading order; image sources are only present for
// the requested page and its neighbours.
func (g *GoogleBooks) GetPages(id string) ([]data.Page, map[string]string, error) {
	var listing issueJSON
	if err := g.client.GetJSON(g.pageListingURL(id, "1", "1"), &listing); err != nil {
		return nil, nil, err
	}

	pages := make([]data.Page, 0, len(listing.Page))
	srcs := make(map[string]string)
	for i, p := range listing.Page {
		pages = append(pages, data.Page{Number: i + 1, PID: p.PID})
		if p.Src != "" {
			srcs[p.PID] = p.Src
		}
	}
	return pages, srcs, nil
}

// GetPageSources fetches the listing for one page and collects every
// image source it includes.
func (g *GoogleBooks) GetPageSources(id, firstPID, pid string) (map[string]string, error) {
	var listing issueJSON
	if err := g.client.GetJSON(g.pageListingURL(id, firstPID, pid), &listing); err != nil {
		return nil, err
	}
	srcs := make(map[string]string)
	for _, p := range listing.Page {
		if p.Src != "" {
			srcs[p.PID] = p.Src
		}
	}
	return srcs, nil
}

// GetImage downloads a page image at the highest resolution the viewer
// will serve.
func (g *GoogleBooks) GetImage(src string) ([]byte, string, error) {
	return g.client.GetBytes(src + "&w=10000")
}

// GetPeriodURLs lists the catalog's period buckets. An empty href marks
// the bucket the current page belongs to.
func (g *GoogleBooks) GetPeriodURLs(rawURL string) ([]string, error) {
	doc, err := g.client.GetDocument(rawURL)
	if err != nil {
		return nil, err
	}

	var urls []string
	doc.Find("#period_selector a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if strings.TrimSpace(href) == "" {
			urls = append(urls, rawURL)
		} else {
			urls = append(urls, resolveRef(rawURL, href))
		}
	})
	return urls, nil
}

// GetIssueURLs lists the issues shown in one period bucket.
func (g *GoogleBooks) GetIssueURLs(rawURL string) ([]string, error) {
	doc, err := g.client.GetDocument(rawURL)
	if err != nil {
		return nil, err
	}

	var urls []string
	doc.Find("div.allissues_gallerycell a:first-child").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && strings.TrimSpace(href) != "" {
			urls = append(urls, resolveRef(rawURL, href))
		}
	})
	return urls, nil
}

// resolveRef resolves href against base, leaving absolute URLs alone.
func resolveRef(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// parseLength parses page counts like "94 pages".
func parseLength(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(text, " pages", "")))
	if err != nil {
		return 0
	}
	return n
}

// textNodes collects the trimmed, non-empty text nodes under a
// selection in document order.
func textNodes(s *goquery.Selection) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				out = append(out, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return out
}
