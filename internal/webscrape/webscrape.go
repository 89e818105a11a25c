// Package webscrape flattens an external page (blog, portfolio) into plain
// text suitable for the normalized context document. Chrome is stripped;
// structure beyond headings and paragraph breaks is not preserved.
package webscrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const maxContentChars = 8000

var multiNewlinePattern = regexp.MustCompile(`\n{3,}`)

// skip marks elements whose subtrees carry no readable content.
var skip = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"footer":   true,
	"header":   true,
	"noscript": true,
}

type Client struct {
	HTTPClient *http.Client
}

func NewClient() *Client {
	return &Client{HTTPClient: &http.Client{Timeout: 10 * time.Second}}
}

// FetchPage retrieves url and returns its readable text, capped at 8000
// characters.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Kognit/1.0; +https://github.com/pomilon/kognit)")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned HTTP %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", pageURL, err)
	}

	return Flatten(string(body))
}

// Flatten converts HTML into markdown-ish text: headings keep a # prefix,
// block elements become paragraph breaks, everything else is inline text.
func Flatten(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parsing page: %w", err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skip[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			t := strings.TrimSpace(n.Data)
			if t != "" {
				sb.WriteString(t)
				sb.WriteString(" ")
			}
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				sb.WriteString("\n\n")
				sb.WriteString(strings.Repeat("#", int(n.Data[1]-'0')))
				sb.WriteString(" ")
			case "p", "div", "li", "br", "section", "article":
				sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	text := multiNewlinePattern.ReplaceAllString(sb.String(), "\n\n")
	text = strings.TrimSpace(text)

	runes := []rune(text)
	if len(runes) > maxContentChars {
		text = string(runes[:maxContentChars])
	}
	return text, nil
}
