// Package normalizer projects a harvested ProfileRecord into the single
// bounded Markdown document the narrative generator consumes. The
// projection is a pure function: identical inputs always produce identical
// bytes, regardless of which acquisition mode filled the record.
package normalizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pomilon/kognit/internal/models"
	"github.com/pomilon/kognit/internal/websearch"
)

const (
	// DefaultMaxReadmeChars is the README budget for pinned projects.
	DefaultMaxReadmeChars = 3000
	// DefaultMaxRepoCount bounds the Top Repositories section.
	DefaultMaxRepoCount = 15

	minTopRepoReadmeChars = 500
	externalSourceCap     = 2000
	snippetCap            = 400
)

// Options carries the optional inputs and budgets for one normalization.
type Options struct {
	// External maps source URL to already-flattened page content. Rendered
	// in sorted-key order so the document stays deterministic.
	External map[string]string
	// SearchResults are web-presence snippets, rendered in given order.
	SearchResults []websearch.Result
	// Audit holds full-dive analyses; only the one-line summary per repo is
	// folded into the document, the narratives stay out of it.
	Audit []models.RepoAnalysis

	IncludeReadmes bool
	MaxReadmeChars int
	MaxRepoCount   int
}

// Render builds the normalized context document.
func Render(rec *models.ProfileRecord, opts Options) string {
	if opts.MaxReadmeChars <= 0 {
		opts.MaxReadmeChars = DefaultMaxReadmeChars
	}
	if opts.MaxRepoCount <= 0 {
		opts.MaxRepoCount = DefaultMaxRepoCount
	}

	var b strings.Builder
	b.WriteString("# Developer Digital Footprint\n\n")

	writeIdentity(&b, rec)
	writeSearchContext(&b, opts.SearchResults)
	writePinned(&b, rec.Pinned, opts)
	writeTopRepos(&b, rec.Repositories, opts)
	writeExternal(&b, opts.External)
	writeAuditSummary(&b, opts.Audit)

	return b.String()
}

// writeIdentity emits every identity field with a stable label, empty
// values included, so downstream parsers see a fixed layout.
func writeIdentity(b *strings.Builder, rec *models.ProfileRecord) {
	b.WriteString("## Identity\n")
	fmt.Fprintf(b, "Name: %s\n", rec.Name)
	fmt.Fprintf(b, "Handle: %s\n", rec.Login)
	fmt.Fprintf(b, "Avatar: %s\n", rec.AvatarURL)
	fmt.Fprintf(b, "Bio: %s\n", rec.Bio)
	fmt.Fprintf(b, "Company: %s\n", rec.Company)
	fmt.Fprintf(b, "Location: %s\n", rec.Location)
	fmt.Fprintf(b, "Website: %s\n", rec.WebsiteURL)
	fmt.Fprintf(b, "Twitter: %s\n", rec.TwitterHandle)
	fmt.Fprintf(b, "Followers: %d\n", rec.Followers)
	fmt.Fprintf(b, "Following: %d\n", rec.Following)
	fmt.Fprintf(b, "Total Contributions (Year): %d\n", rec.Contributions.Total)
	fmt.Fprintf(b, "Commits / PRs / Issues / Repos Created (Year): %d / %d / %d / %d\n",
		rec.Contributions.Commits, rec.Contributions.PullRequests,
		rec.Contributions.Issues, rec.Contributions.Repositories)
	b.WriteString("\n")
}

func writeSearchContext(b *strings.Builder, results []websearch.Result) {
	if len(results) == 0 {
		return
	}
	b.WriteString("## Web Search Context (Online Presence)\n")
	for _, r := range results {
		fmt.Fprintf(b, "- [%s](%s)\n", r.Title, r.URL)
		fmt.Fprintf(b, "  Snippet: %s\n", clip(r.Snippet, snippetCap))
	}
	b.WriteString("\n")
}

func writePinned(b *strings.Builder, pinned []models.RepositorySummary, opts Options) {
	b.WriteString("## Pinned Projects (High Signal)\n")
	for _, item := range pinned {
		fmt.Fprintf(b, "### %s\n", item.Name)
		fmt.Fprintf(b, "Description: %s\n", strOr(item.Description))
		fmt.Fprintf(b, "URL: %s\n", item.URL)
		fmt.Fprintf(b, "Stars: %d\n", item.Stars)
		if item.Language != nil {
			fmt.Fprintf(b, "Language: %s\n", *item.Language)
		}
		writeDetail(b, item.Detail)
		if opts.IncludeReadmes {
			writeReadmeFence(b, item.Detail, opts.MaxReadmeChars)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeDetail(b *strings.Builder, d *models.RepositoryDetail) {
	if d == nil {
		return
	}
	fmt.Fprintf(b, "Total Commits: %d\n", d.CommitCount)
	if len(d.RecentCommits) > 0 {
		fmt.Fprintf(b, "Recent Commits: %s\n", strings.Join(d.RecentCommits, " | "))
	}
	if len(d.RootEntries) > 0 {
		names := make([]string, 0, len(d.RootEntries))
		for _, e := range d.RootEntries {
			if e.IsDir {
				names = append(names, e.Name+"/")
			} else {
				names = append(names, e.Name)
			}
		}
		fmt.Fprintf(b, "Root Structure: %s\n", strings.Join(names, ", "))
	}
}

func writeReadmeFence(b *strings.Builder, d *models.RepositoryDetail, budget int) {
	if d == nil || d.Readme == nil || *d.Readme == "" {
		return
	}
	b.WriteString("README Snippet:\n")
	fmt.Fprintf(b, "```\n%s\n```\n", clip(*d.Readme, budget))
}

// writeTopRepos lists the first MaxRepoCount owned repositories in the
// record's delivered order; normalization never re-sorts. Unpinned repos
// get a smaller README budget than pinned ones.
func writeTopRepos(b *strings.Builder, repos []models.RepositorySummary, opts Options) {
	b.WriteString("## Top Repositories (Active & Significant)\n")
	b.WriteString("Note: These repositories are statistically significant. Analyze them for technical depth even if not pinned.\n")

	budget := opts.MaxReadmeChars / 3
	if budget < minTopRepoReadmeChars {
		budget = minTopRepoReadmeChars
	}

	for i, repo := range repos {
		if i >= opts.MaxRepoCount {
			break
		}
		fmt.Fprintf(b, "- **%s**: %s\n", repo.Name, strOr(repo.Description))
		fmt.Fprintf(b, "  Stack: %s\n", strings.Join(repo.Languages, ", "))
		fmt.Fprintf(b, "  Stars: %d | Updated: %s\n", repo.Stars, repo.PushedAt)
		if d := repo.Detail; d != nil {
			fmt.Fprintf(b, "  Total Commits: %d\n", d.CommitCount)
			if len(d.RecentCommits) > 0 {
				fmt.Fprintf(b, "  Recent Commits: %s\n", strings.Join(d.RecentCommits, " | "))
			}
			if opts.IncludeReadmes && d.Readme != nil && *d.Readme != "" {
				fmt.Fprintf(b, "  README Extract: %s\n", clip(*d.Readme, budget))
			}
		}
	}
	b.WriteString("\n")
}

func writeExternal(b *strings.Builder, external map[string]string) {
	if len(external) == 0 {
		return
	}

	urls := make([]string, 0, len(external))
	for u := range external {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	b.WriteString("## External Web Content (Blogs/Portfolios)\n")
	for _, u := range urls {
		fmt.Fprintf(b, "### Source: %s\n", u)
		fmt.Fprintf(b, "```markdown\n%s\n```\n", clip(external[u], externalSourceCap))
	}
	b.WriteString("\n")
}

// writeAuditSummary folds the full-dive verdicts in as one line per repo.
// The deconstruction narratives stay attached to the identity record
// instead; duplicating them here would blow the document budget.
func writeAuditSummary(b *strings.Builder, analyses []models.RepoAnalysis) {
	if len(analyses) == 0 {
		return
	}
	b.WriteString("## Technical Audit Summary (Full details appended to report)\n")
	for _, a := range analyses {
		fmt.Fprintf(b, "- %s: Complexity %d/10. Stack: %s\n",
			a.Name, a.ComplexityScore, strings.Join(a.KeyTechnologies, ", "))
	}
	b.WriteString("\n")
}

// clip truncates on a rune boundary. Re-clipping an already clipped string
// with the same budget is a no-op, so excerpts never drift across runs.
func clip(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}

func strOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
