package webscrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	page := `<html><head>
<script>var tracking = true;</script>
<style>body { color: red; }</style>
</head><body>
<nav><a href="/">Home</a></nav>
<h1>Ada Lovelace</h1>
<p>Engine programmer and writer.</p>
<h2>Projects</h2>
<ul><li>engine</li><li>notes</li></ul>
<footer>Copyright</footer>
</body></html>`

	out, err := Flatten(page)
	require.NoError(t, err)

	assert.Contains(t, out, "# Ada Lovelace")
	assert.Contains(t, out, "## Projects")
	assert.Contains(t, out, "Engine programmer and writer.")
	assert.NotContains(t, out, "tracking")
	assert.NotContains(t, out, "color: red")
	assert.NotContains(t, out, "Home")
	assert.NotContains(t, out, "Copyright")
	assert.NotContains(t, out, "\n\n\n")
}

func TestFlattenCapsLength(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&sb, "<p>paragraph number %d with some padding text</p>", i)
	}
	sb.WriteString("</body></html>")

	out, err := Flatten(sb.String())
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(out)), maxContentChars)
}

func TestFetchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, "<html><body><h1>Hello</h1><p>World</p></body></html>")
	}))
	defer server.Close()

	out, err := NewClient().FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "# Hello")
	assert.Contains(t, out, "World")
}

func TestFetchPageErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewClient().FetchPage(context.Background(), server.URL)
	assert.Error(t, err)
}
