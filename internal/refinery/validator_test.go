package refinery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pomilon/kognit/internal/models"
	"github.com/stretchr/testify/assert"
)

func validatorServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/no-head":
			// Some servers reject HEAD but serve GET fine.
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
			} else {
				w.WriteHeader(http.StatusOK)
			}
		case "/head-fails-get-works":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusForbidden)
			} else {
				w.WriteHeader(http.StatusOK)
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestInvalidLinks(t *testing.T) {
	server := validatorServer()
	defer server.Close()

	v := &Validator{HTTPClient: server.Client()}
	links := []string{
		server.URL + "/ok",
		server.URL + "/no-head",
		server.URL + "/head-fails-get-works",
		server.URL + "/missing",
		"not-a-url",
		"ftp://example.com/file",
	}

	invalid := v.InvalidLinks(context.Background(), links)
	assert.ElementsMatch(t, []string{
		server.URL + "/missing",
		"not-a-url",
		"ftp://example.com/file",
	}, invalid)
}

func TestInvalidLinksMalformedSkipsNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	v := &Validator{HTTPClient: server.Client()}
	invalid := v.InvalidLinks(context.Background(), []string{"mailto:ada@example.com"})

	assert.Equal(t, []string{"mailto:ada@example.com"}, invalid)
	assert.False(t, called)
}

func TestRefineDropsInvalidLinksInPlace(t *testing.T) {
	server := validatorServer()
	defer server.Close()

	v := &Validator{HTTPClient: server.Client()}
	identity := &models.DeveloperIdentity{
		ExternalLinks: []string{server.URL + "/ok", "garbage", server.URL + "/no-head"},
	}

	v.Refine(context.Background(), identity)
	assert.Equal(t, []string{server.URL + "/ok", server.URL + "/no-head"}, identity.ExternalLinks)
}
