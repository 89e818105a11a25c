package refinery

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pomilon/kognit/internal/logger"
	"github.com/pomilon/kognit/internal/models"
	"go.uber.org/zap"
)

// Validator checks external links for reachability.
type Validator struct {
	HTTPClient *http.Client
}

func NewValidator() *Validator {
	return &Validator{HTTPClient: &http.Client{Timeout: 3 * time.Second}}
}

// InvalidLinks returns the subset of links that are malformed or
// unreachable. Malformed links are reported without touching the network.
// HEAD is tried first; a 405 means the resource exists, anything else
// >= 400 gets one GET retry before the link is condemned.
func (v *Validator) InvalidLinks(ctx context.Context, links []string) []string {
	var invalid []string
	for _, link := range links {
		if !strings.HasPrefix(link, "http") {
			invalid = append(invalid, link)
			continue
		}
		if !v.reachable(ctx, link) {
			invalid = append(invalid, link)
		}
	}
	return invalid
}

func (v *Validator) reachable(ctx context.Context, link string) bool {
	status, err := v.request(ctx, http.MethodHead, link)
	if err != nil {
		return false
	}
	if status < 400 || status == http.StatusMethodNotAllowed {
		return true
	}

	status, err = v.request(ctx, http.MethodGet, link)
	if err != nil {
		return false
	}
	return status < 400
}

func (v *Validator) request(ctx context.Context, method, link string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, link, nil)
	if err != nil {
		return 0, err
	}
	resp, err := v.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

// Refine drops unreachable links off the identity in place.
func (v *Validator) Refine(ctx context.Context, identity *models.DeveloperIdentity) {
	invalid := v.InvalidLinks(ctx, identity.ExternalLinks)
	if len(invalid) == 0 {
		return
	}
	logger.Info("removing invalid links", zap.Strings("links", invalid))

	bad := make(map[string]bool, len(invalid))
	for _, l := range invalid {
		bad[l] = true
	}
	kept := identity.ExternalLinks[:0]
	for _, l := range identity.ExternalLinks {
		if !bad[l] {
			kept = append(kept, l)
		}
	}
	identity.ExternalLinks = kept
}
