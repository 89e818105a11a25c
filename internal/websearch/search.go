// Package websearch finds a developer's external footprint through the
// DuckDuckGo HTML interface, which needs no API key. The result markup is
// not a stable contract, so extraction is best-effort throughout.
package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pomilon/kognit/internal/markup"
	"golang.org/x/net/html"
)

const (
	searchEndpoint    = "https://html.duckduckgo.com/html/"
	DefaultMaxResults = 5
)

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Client performs web searches. Endpoint is overridable for tests.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

func NewClient() *Client {
	return &Client{
		Endpoint:   searchEndpoint,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SearchDeveloper refines the query toward technical content and returns
// up to maxResults hits. A failed search yields an empty slice and the
// error; callers treat the footprint as optional.
func (c *Client) SearchDeveloper(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	refined := query + " software developer github engineering"
	return c.search(ctx, refined, maxResults)
}

func (c *Client) search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	searchURL := fmt.Sprintf("%s?q=%s", c.Endpoint, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return ParseResults(string(body), maxResults)
}

// ParseResults extracts results from the DuckDuckGo HTML page.
func ParseResults(htmlContent string, maxResults int) ([]Result, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parsing search page: %w", err)
	}

	var results []Result
	for _, div := range markup.FindAll(doc, markup.Locator{Tag: "div", Class: "result"}) {
		if !markup.HasClass(div, "results_links") {
			continue
		}
		r := extractResult(div)
		if r.URL != "" && r.Title != "" {
			results = append(results, r)
		}
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}

func extractResult(div *html.Node) Result {
	var r Result
	for _, a := range markup.FindAll(div, markup.Locator{Tag: "a"}) {
		switch {
		case markup.HasClass(a, "result__a") && r.URL == "":
			r.URL = cleanRedirect(markup.AttrValue(a, "href"))
			r.Title = markup.TextContent(a)
		case markup.HasClass(a, "result__snippet") && r.Snippet == "":
			r.Snippet = markup.TextContent(a)
		}
	}
	return r
}

// cleanRedirect unwraps DuckDuckGo's /l/?uddg= redirect URLs.
func cleanRedirect(href string) string {
	const prefix = "//duckduckgo.com/l/?uddg="
	if !strings.HasPrefix(href, prefix) {
		return href
	}
	decoded, err := url.QueryUnescape(strings.TrimPrefix(href, prefix))
	if err != nil {
		return href
	}
	if idx := strings.Index(decoded, "&"); idx > 0 {
		decoded = decoded[:idx]
	}
	return decoded
}
