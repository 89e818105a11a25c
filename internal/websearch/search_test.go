package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<html><body>
<div class="result results_links results_links_deep web-result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fada.example%2Fblog&amp;rut=abc">Ada's Engine Blog</a>
  <a class="result__snippet" href="https://ada.example/blog">Notes on building difference engines in Go.</a>
</div>
<div class="result results_links">
  <a class="result__a" href="https://conf.example/talk">Conference talk</a>
  <a class="result__snippet" href="https://conf.example/talk">A talk about compilers.</a>
</div>
<div class="result">
  <a class="result__a" href="https://skipped.example">Missing the links class</a>
</div>
<div class="result results_links">
  <a class="result__a" href="https://third.example">Third</a>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	results, err := ParseResults(resultsPage, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Ada's Engine Blog", results[0].Title)
	assert.Equal(t, "https://ada.example/blog", results[0].URL)
	assert.Equal(t, "Notes on building difference engines in Go.", results[0].Snippet)

	assert.Equal(t, "Conference talk", results[1].Title)
	assert.Equal(t, "https://conf.example/talk", results[1].URL)

	assert.Equal(t, "Third", results[2].Title)
	assert.Empty(t, results[2].Snippet)
}

func TestParseResultsHonorsMax(t *testing.T) {
	results, err := ParseResults(resultsPage, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Ada's Engine Blog", results[0].Title)
}

func TestCleanRedirect(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fada.example%2Fblog&rut=abc", "https://ada.example/blog"},
		{"https://direct.example/page", "https://direct.example/page"},
		{"//duckduckgo.com/l/?uddg=%zz", "//duckduckgo.com/l/?uddg=%zz"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, cleanRedirect(tc.in))
	}
}

func TestSearchDeveloperQueriesEndpoint(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, resultsPage)
	}))
	defer server.Close()

	c := NewClient()
	c.Endpoint = server.URL

	results, err := c.SearchDeveloper(context.Background(), "Ada Lovelace", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "Ada Lovelace software developer github engineering", gotQuery)
}
