package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pomilon/kognit/internal/logger"
	"github.com/pomilon/kognit/internal/markup"
	"github.com/pomilon/kognit/internal/models"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

var (
	countPattern      = regexp.MustCompile(`[\d,]+`)
	commitHashPattern = regexp.MustCompile(`/commit/[a-f0-9]{40}`)
)

// DetailFetcher retrieves the per-repository follow-up data: commit count,
// recent commit messages, root listing, and README. Every field is
// resolved independently and best-effort; the fetcher never returns an
// error, only a detail with whatever it could recover.
type DetailFetcher struct {
	client  *http.Client
	rawBase string
}

// Fetch resolves the detail for one repository landing URL.
func (f *DetailFetcher) Fetch(ctx context.Context, repoURL string) *models.RepositoryDetail {
	d := &models.RepositoryDetail{}

	doc, err := f.getDoc(ctx, repoURL)
	if err != nil {
		logger.Debug("repo landing page unavailable", zap.String("url", repoURL), zap.Error(err))
	} else {
		d.CommitCount = commitCount(doc)
		d.RootEntries = rootEntries(doc, repoURL)
	}

	d.RecentCommits = f.recentCommits(ctx, repoURL)
	d.Readme = f.readme(ctx, repoURL)

	return d
}

// commitCount tries the landing page's commit counter: first any span
// mentioning "commits", then the compact header variant.
func commitCount(doc *html.Node) int {
	for _, span := range markup.FindAll(doc, markup.Locator{Tag: "span"}) {
		text := markup.TextContent(span)
		if !strings.Contains(strings.ToLower(text), "commits") {
			continue
		}
		if m := countPattern.FindString(text); m != "" {
			if n := markup.Count(m); n > 0 {
				return n
			}
		}
	}

	for _, span := range markup.FindAll(doc, markup.Locator{Tag: "span", Class: "d-none"}) {
		if !markup.HasClass(span, "d-sm-inline") {
			continue
		}
		if strong := markup.Find(span, markup.Locator{Tag: "strong"}); strong != nil {
			return markup.Count(markup.TextContent(strong))
		}
	}
	return 0
}

// rootEntries scans primary-styled links whose href is scoped under this
// repository's /tree/ or /blob/ paths and classifies them by path keyword.
func rootEntries(doc *html.Node, repoURL string) []models.RootEntry {
	repoPath := repoPathOf(repoURL)
	if repoPath == "" {
		return nil
	}

	var entries []models.RootEntry
	seen := make(map[string]bool)
	for _, link := range markup.FindAll(doc, markup.Locator{Tag: "a", Class: "Link--primary"}) {
		href := markup.AttrValue(link, "href")
		name := markup.TextContent(link)
		if name == "" || seen[name] {
			continue
		}
		isTree := strings.Contains(href, repoPath+"/tree/")
		isBlob := strings.Contains(href, repoPath+"/blob/")
		if !isTree && !isBlob {
			continue
		}
		if len(strings.Split(strings.Trim(href, "/"), "/")) < 5 {
			continue
		}
		seen[name] = true
		entries = append(entries, models.RootEntry{Name: name, IsDir: isTree})
	}
	return entries
}

// commitsPayload is the embedded JSON the commit-history page ships for its
// client-side renderer. Only the message path is of interest; everything
// else is ignored.
type commitsPayload struct {
	Payload struct {
		CommitGroups []struct {
			Commits []struct {
				ShortMessage string `json:"shortMessage"`
			} `json:"commits"`
		} `json:"commitGroups"`
	} `json:"payload"`
}

// recentCommits fetches the commit-history page and extracts up to 4
// distinct short messages, preferring the embedded JSON payload, then
// row-level link text, then any link that looks like a commit URL.
func (f *DetailFetcher) recentCommits(ctx context.Context, repoURL string) []string {
	doc, err := f.getDoc(ctx, repoURL+"/commits")
	if err != nil {
		logger.Debug("commit history unavailable", zap.String("url", repoURL), zap.Error(err))
		return nil
	}

	if msgs := commitsFromEmbeddedJSON(doc); len(msgs) > 0 {
		return msgs
	}
	if msgs := commitsFromRows(doc); len(msgs) > 0 {
		return msgs
	}
	return commitsFromHashLinks(doc)
}

func commitsFromEmbeddedJSON(doc *html.Node) []string {
	script := markup.Find(doc, markup.Locator{Tag: "script", Attr: "data-target", Val: "react-app.embeddedData"})
	if script == nil || script.FirstChild == nil {
		return nil
	}

	var payload commitsPayload
	if err := json.Unmarshal([]byte(script.FirstChild.Data), &payload); err != nil {
		return nil
	}

	var msgs []string
	seen := make(map[string]bool)
	for _, group := range payload.Payload.CommitGroups {
		for _, c := range group.Commits {
			if c.ShortMessage == "" || seen[c.ShortMessage] {
				continue
			}
			seen[c.ShortMessage] = true
			msgs = append(msgs, c.ShortMessage)
			if len(msgs) >= maxRecentCommits {
				return msgs
			}
		}
	}
	return msgs
}

func commitsFromRows(doc *html.Node) []string {
	rows := markup.FindAll(doc, markup.Locator{Tag: "div", Attr: "data-testid", Val: "commit-row-item"})
	rows = append(rows, markup.FindAll(doc, markup.Locator{Tag: "li", Class: "Box-row"})...)

	var msgs []string
	seen := make(map[string]bool)
	for _, row := range rows {
		link := markup.Find(row, markup.Locator{Tag: "a", Class: "Link--primary"})
		if h4 := markup.Find(row, markup.Locator{Tag: "h4"}); h4 != nil {
			if a := markup.Find(h4, markup.Locator{Tag: "a"}); a != nil {
				link = a
			}
		}
		text := markup.TextContent(link)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		msgs = append(msgs, text)
		if len(msgs) >= maxRecentCommits {
			break
		}
	}
	return msgs
}

// commitsFromHashLinks is the last resort: any anchor pointing at a full
// commit hash, skipping hash-only link text.
func commitsFromHashLinks(doc *html.Node) []string {
	var msgs []string
	seen := make(map[string]bool)
	for _, link := range markup.FindAll(doc, markup.Locator{Tag: "a"}) {
		if !commitHashPattern.MatchString(markup.AttrValue(link, "href")) {
			continue
		}
		text := markup.TextContent(link)
		if len(text) <= 8 || seen[text] {
			continue
		}
		seen[text] = true
		msgs = append(msgs, text)
		if len(msgs) >= maxRecentCommits {
			break
		}
	}
	return msgs
}

// readme tries the raw-content URL under the two conventional default
// branch names. Absence of both is a valid empty result.
func (f *DetailFetcher) readme(ctx context.Context, repoURL string) *string {
	repoPath := repoPathOf(repoURL)
	if repoPath == "" {
		return nil
	}

	for _, branch := range []string{"main", "master"} {
		rawURL := fmt.Sprintf("%s%s/%s/README.md", f.rawBase, repoPath, branch)
		body, status, err := f.get(ctx, rawURL)
		if err != nil || status != http.StatusOK {
			continue
		}
		text := string(body)
		return &text
	}
	return nil
}

func (f *DetailFetcher) getDoc(ctx context.Context, pageURL string) (*html.Node, error) {
	body, status, err := f.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", status, pageURL)
	}
	return html.Parse(strings.NewReader(string(body)))
}

func (f *DetailFetcher) get(ctx context.Context, pageURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// repoPathOf reduces a repository landing URL to its "/owner/name" path.
func repoPathOf(repoURL string) string {
	u, err := url.Parse(repoURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return ""
	}
	return "/" + parts[len(parts)-2] + "/" + parts[len(parts)-1]
}
