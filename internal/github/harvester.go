// Package github harvests a public developer profile through two
// incompatible channels: an authenticated GraphQL query when a token is
// available, and best-effort scraping of the public HTML pages otherwise.
// Both channels produce the same ProfileRecord shape.
package github

import (
	"context"
	"errors"
	"time"

	"github.com/pomilon/kognit/internal/logger"
	"github.com/pomilon/kognit/internal/models"
	"go.uber.org/zap"
)

// ErrUserNotFound is returned when the profile page answers 404. It is the
// only per-user hard failure; everything else degrades.
var ErrUserNotFound = errors.New("user not found")

const (
	maxRecentCommits  = 4
	maxStarredScraped = 10
	repoListPages     = 3

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Harvester fetches one profile per invocation. The URL fields exist so
// tests can point it at fixture servers; zero values are filled by
// NewHarvester.
type Harvester struct {
	Token        string
	ForceBrowser bool

	APIURL            string
	BaseURL           string
	RawBaseURL        string
	Timeout           time.Duration
	DetailConcurrency int
}

func NewHarvester(token string, forceBrowser bool) *Harvester {
	return &Harvester{
		Token:             token,
		ForceBrowser:      forceBrowser,
		APIURL:            graphqlEndpoint,
		BaseURL:           "https://github.com",
		RawBaseURL:        "https://raw.githubusercontent.com",
		Timeout:           15 * time.Second,
		DetailConcurrency: 10,
	}
}

// FetchProfile acquires the full profile. With a token (and browser mode
// not forced) it attempts the structured query first and degrades to page
// scraping on any failure; the transport error never surfaces to the
// caller. Each mode starts from its own HTTP client.
func (h *Harvester) FetchProfile(ctx context.Context, login string) (*models.ProfileRecord, error) {
	if h.Token != "" && !h.ForceBrowser {
		logger.Info("attempting structured query", zap.String("login", login))
		rec, err := h.fetchViaAPI(ctx, login)
		if err == nil {
			return rec, nil
		}
		logger.Warn("structured query failed, falling back to page scraping",
			zap.String("login", login), zap.Error(err))
	} else {
		logger.Info("using page scraping mode", zap.String("login", login))
	}
	return h.scrapeProfile(ctx, login)
}
