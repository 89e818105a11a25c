package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pomilon/kognit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteHTML(t *testing.T) {
	identity := &models.DeveloperIdentity{
		Name:      "Ada Lovelace",
		AvatarURL: "https://avatars.test/ada.png",
		Headline:  "Engine programmer",
		Summary:   "Builds **difference engines** for fun.",
		TechnicalDNA: models.TechnicalDNA{
			Languages:      []string{"Go", "TeX"},
			Specialization: "Systems",
		},
		ProjectHighlights: []models.ProjectHighlight{
			{Name: "engine", Description: "An emulator", URL: "https://github.com/ada/engine"},
		},
		ExternalLinks: []string{"https://github.com/ada"},
		RepositoryAnalyses: []models.RepoAnalysis{
			{Name: "engine", ComplexityScore: 8, KeyTechnologies: []string{"Go"}, Summary: "An emulator.", TechnicalDeconstruction: "### Layers\nClean."},
		},
	}

	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, WriteHTML(identity, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(raw)

	assert.Contains(t, html, "Ada Lovelace")
	assert.Contains(t, html, "https://avatars.test/ada.png")
	// Markdown bold survives as real markup, not literal asterisks.
	assert.Contains(t, html, "<strong>difference engines</strong>")
	assert.Contains(t, html, "engine")
	assert.Contains(t, html, "8/10")
}

func TestWriteHTMLEmptyIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, WriteHTML(&models.DeveloperIdentity{}, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}
