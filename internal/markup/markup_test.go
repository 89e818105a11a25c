package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const sampleDoc = `
<html><body>
  <span class="p-name vcard-fullname">Ada Lovelace</span>
  <div class="user-profile-bio"><div>Writes  engines.</div></div>
  <a class="u-url" rel="me" href="https://example.org">example.org</a>
  <img class="avatar avatar-user" src="/a.png">
  <span itemprop="programmingLanguage">Go</span>
  <ul>
    <li class="entry">one</li>
    <li class="entry">two</li>
  </ul>
</body></html>`

func parse(t *testing.T, s string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func TestTextByClass(t *testing.T) {
	doc := parse(t, sampleDoc)

	assert.Equal(t, "Ada Lovelace", Text(doc, Locator{Tag: "span", Class: "p-name"}))
	assert.Equal(t, "Writes engines.", Text(doc, Locator{Tag: "div", Class: "user-profile-bio"}))
}

func TestTextByAttr(t *testing.T) {
	doc := parse(t, sampleDoc)

	assert.Equal(t, "Go", Text(doc, Locator{Tag: "span", Attr: "itemprop", Val: "programmingLanguage"}))
}

func TestMissingNodeIsEmptyNotError(t *testing.T) {
	doc := parse(t, sampleDoc)

	assert.Empty(t, Text(doc, Locator{Tag: "span", Class: "does-not-exist"}))
	assert.Empty(t, Attr(doc, Locator{Tag: "a", Class: "does-not-exist"}, "href"))
	assert.Empty(t, Attr(doc, Locator{Tag: "a", Class: "u-url"}, "data-missing"))
	assert.Nil(t, Find(nil, Locator{Tag: "a"}))
	assert.Empty(t, TextContent(nil))
}

func TestAttr(t *testing.T) {
	doc := parse(t, sampleDoc)

	assert.Equal(t, "https://example.org", Attr(doc, Locator{Tag: "a", Class: "u-url"}, "href"))
	assert.Equal(t, "/a.png", Attr(doc, Locator{Tag: "img", Class: "avatar"}, "src"))
}

func TestFindAllOrder(t *testing.T) {
	doc := parse(t, sampleDoc)

	items := FindAll(doc, Locator{Tag: "li", Class: "entry"})
	require.Len(t, items, 2)
	assert.Equal(t, "one", TextContent(items[0]))
	assert.Equal(t, "two", TextContent(items[1]))
}

func TestCount(t *testing.T) {
	cases := map[string]int{
		"1.2k":    1200,
		"3m":      3000000,
		"3,400":   3400,
		"  812 ":  812,
		"1,200.5": 1200,
		"n/a":     0,
		"":        0,
		"k":       0,
	}
	for in, want := range cases {
		assert.Equal(t, want, Count(in), "Count(%q)", in)
	}
}
