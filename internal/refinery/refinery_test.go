package refinery

import (
	"testing"

	"github.com/pomilon/kognit/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestReconcileForcesObservedFacts(t *testing.T) {
	identity := &models.DeveloperIdentity{
		Name:          "A. Lovelace",
		AvatarURL:     "https://hallucinated.example/pic.png",
		ExternalLinks: []string{"https://ada.example"},
	}
	rec := &models.ProfileRecord{
		Login:     "ada",
		Name:      "Ada Lovelace",
		AvatarURL: "https://avatars.test/ada.png",
	}

	Reconcile(identity, rec)

	assert.Equal(t, "https://avatars.test/ada.png", identity.AvatarURL)
	// A non-empty generated name wins; only a blank one is backfilled.
	assert.Equal(t, "A. Lovelace", identity.Name)
	assert.Equal(t, []string{"https://github.com/ada", "https://ada.example"}, identity.ExternalLinks)
}

func TestReconcileDoesNotDuplicateProfileLink(t *testing.T) {
	identity := &models.DeveloperIdentity{
		ExternalLinks: []string{"https://github.com/ada"},
	}
	rec := &models.ProfileRecord{Login: "ada", Name: "Ada"}

	Reconcile(identity, rec)

	assert.Equal(t, []string{"https://github.com/ada"}, identity.ExternalLinks)
	assert.Equal(t, "Ada", identity.Name)
}

func TestBuildPromptModes(t *testing.T) {
	base := buildPrompt(Options{Mode: ModeSummary})
	deep := buildPrompt(Options{Mode: ModeDeepDive})
	conn := buildPrompt(Options{Mode: ModeConnections})

	assert.NotContains(t, base, "EMPHASIS")
	assert.Contains(t, deep, "technical_depth_report")
	assert.Contains(t, conn, "ecosystem_report")

	custom := buildPrompt(Options{Mode: ModeSummary, CustomInstructions: "focus on compilers"})
	assert.Contains(t, custom, "focus on compilers")
}
