package normalizer

import (
	"strings"
	"testing"

	"github.com/pomilon/kognit/internal/models"
	"github.com/pomilon/kognit/internal/websearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestRenderEmptyRecordKeepsStableLayout(t *testing.T) {
	rec := &models.ProfileRecord{Login: "ghostly"}
	doc := Render(rec, Options{})

	assert.True(t, strings.HasPrefix(doc, "# Developer Digital Footprint\n"))
	for _, label := range []string{
		"Name: ", "Handle: ghostly", "Avatar: ", "Bio: ", "Company: ",
		"Location: ", "Website: ", "Twitter: ", "Followers: 0",
		"Following: 0", "Total Contributions (Year): 0",
		"Commits / PRs / Issues / Repos Created (Year): 0 / 0 / 0 / 0",
	} {
		assert.Contains(t, doc, label)
	}
	assert.Contains(t, doc, "## Pinned Projects (High Signal)")
	assert.Contains(t, doc, "## Top Repositories (Active & Significant)")
	assert.NotContains(t, doc, "## Web Search Context")
	assert.NotContains(t, doc, "## External Web Content")
	assert.NotContains(t, doc, "## Technical Audit Summary")
}

func TestRenderIsDeterministic(t *testing.T) {
	rec := &models.ProfileRecord{
		Name:  "Ada",
		Login: "ada",
	}
	opts := Options{
		External: map[string]string{
			"https://z.example": "zeta content",
			"https://a.example": "alpha content",
			"https://m.example": "middle content",
		},
	}

	first := Render(rec, opts)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Render(rec, opts))
	}

	// Sources appear in sorted-key order.
	za := strings.Index(first, "Source: https://a.example")
	zm := strings.Index(first, "Source: https://m.example")
	zz := strings.Index(first, "Source: https://z.example")
	assert.True(t, za < zm && zm < zz)
}

func TestRenderPreservesRepositoryOrder(t *testing.T) {
	rec := &models.ProfileRecord{
		Login: "ada",
		Repositories: []models.RepositorySummary{
			{Name: "alpha", Stars: 5, Languages: []string{"Go"}},
			{Name: "bravo", Stars: 50, Languages: []string{"Rust"}},
			{Name: "charlie", Stars: 1, Languages: []string{"C"}},
		},
	}
	doc := Render(rec, Options{})

	ia := strings.Index(doc, "**alpha**")
	ib := strings.Index(doc, "**bravo**")
	ic := strings.Index(doc, "**charlie**")
	require.True(t, ia >= 0 && ib >= 0 && ic >= 0)
	assert.True(t, ia < ib && ib < ic, "delivered order must survive, not star order")
}

func TestRenderCapsTopRepoCount(t *testing.T) {
	rec := &models.ProfileRecord{Login: "ada"}
	for i := 0; i < 30; i++ {
		rec.Repositories = append(rec.Repositories, models.RepositorySummary{
			Name: "repo" + string(rune('a'+i)),
		})
	}
	doc := Render(rec, Options{MaxRepoCount: 4})

	assert.Contains(t, doc, "**repod**")
	assert.NotContains(t, doc, "**repoe**")
}

func TestRenderClipsPinnedReadme(t *testing.T) {
	long := strings.Repeat("x", 5000)
	rec := &models.ProfileRecord{
		Login: "ada",
		Pinned: []models.RepositorySummary{{
			Name:   "engine",
			Detail: &models.RepositoryDetail{Readme: &long},
		}},
	}
	doc := Render(rec, Options{IncludeReadmes: true, MaxReadmeChars: 100})

	assert.Contains(t, doc, strings.Repeat("x", 100)+"\n```")
	assert.NotContains(t, doc, strings.Repeat("x", 101))
}

func TestRenderDetailLines(t *testing.T) {
	rec := &models.ProfileRecord{
		Login: "ada",
		Pinned: []models.RepositorySummary{{
			Name: "engine",
			Detail: &models.RepositoryDetail{
				CommitCount:   128,
				RecentCommits: []string{"Add parser", "Fix overflow"},
				RootEntries: []models.RootEntry{
					{Name: "cmd", IsDir: true},
					{Name: "go.mod", IsDir: false},
				},
			},
		}},
	}
	doc := Render(rec, Options{})

	assert.Contains(t, doc, "Total Commits: 128")
	assert.Contains(t, doc, "Recent Commits: Add parser | Fix overflow")
	assert.Contains(t, doc, "Root Structure: cmd/, go.mod")
}

func TestRenderSearchAndAuditSections(t *testing.T) {
	rec := &models.ProfileRecord{Login: "ada"}
	doc := Render(rec, Options{
		SearchResults: []websearch.Result{
			{Title: "Ada's blog", URL: "https://ada.example", Snippet: "writes about engines"},
		},
		Audit: []models.RepoAnalysis{
			{Name: "engine", ComplexityScore: 8, KeyTechnologies: []string{"Go", "WASM"}},
			{Name: "notes", ComplexityScore: 0, KeyTechnologies: []string{}},
		},
	})

	assert.Contains(t, doc, "## Web Search Context (Online Presence)")
	assert.Contains(t, doc, "- [Ada's blog](https://ada.example)")
	assert.Contains(t, doc, "- engine: Complexity 8/10. Stack: Go, WASM")
	assert.Contains(t, doc, "- notes: Complexity 0/10. Stack: \n")
}

func TestClipIdempotentOnRuneBoundary(t *testing.T) {
	s := strings.Repeat("héllo wörld ", 100)

	once := clip(s, 50)
	assert.Equal(t, 50, len([]rune(once)))
	assert.Equal(t, once, clip(once, 50))

	short := "tiny"
	assert.Equal(t, "tiny", clip(short, 50))
}

func TestTopRepoBudgetFloor(t *testing.T) {
	long := strings.Repeat("r", 2000)
	rec := &models.ProfileRecord{
		Login: "ada",
		Repositories: []models.RepositorySummary{{
			Name:        "notes",
			Description: strptr("Research notes"),
			Detail:      &models.RepositoryDetail{Readme: &long},
		}},
	}

	// 600/3 = 200 is below the floor, so 500 chars survive.
	doc := Render(rec, Options{IncludeReadmes: true, MaxReadmeChars: 600})
	assert.Contains(t, doc, strings.Repeat("r", 500))
	assert.NotContains(t, doc, strings.Repeat("r", 501))
}
