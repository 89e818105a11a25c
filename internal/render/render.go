// Package render writes the synthesized identity out as a standalone HTML
// report. Markdown narrative fields are converted with goldmark.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"

	"github.com/pomilon/kognit/internal/models"
	"github.com/yuin/goldmark"
)

//go:embed templates/report.html
var templateFS embed.FS

type reportData struct {
	Identity *models.DeveloperIdentity

	SummaryHTML     template.HTML
	DepthReportHTML template.HTML
	EcosystemHTML   template.HTML
	AnalysisHTML    []repoAnalysisHTML
}

type repoAnalysisHTML struct {
	Name            string
	ComplexityScore int
	Technologies    []string
	SummaryHTML     template.HTML
	BodyHTML        template.HTML
}

// WriteHTML renders the identity report to path.
func WriteHTML(identity *models.DeveloperIdentity, path string) error {
	tmpl, err := template.ParseFS(templateFS, "templates/report.html")
	if err != nil {
		return fmt.Errorf("parsing report template: %w", err)
	}

	data := reportData{
		Identity:        identity,
		SummaryHTML:     markdownHTML(identity.Summary),
		DepthReportHTML: markdownHTML(identity.TechnicalDepthReport),
		EcosystemHTML:   markdownHTML(identity.EcosystemReport),
	}
	for _, a := range identity.RepositoryAnalyses {
		data.AnalysisHTML = append(data.AnalysisHTML, repoAnalysisHTML{
			Name:            a.Name,
			ComplexityScore: a.ComplexityScore,
			Technologies:    a.KeyTechnologies,
			SummaryHTML:     markdownHTML(a.Summary),
			BodyHTML:        markdownHTML(a.TechnicalDeconstruction),
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func markdownHTML(md string) template.HTML {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		// Fall back to the raw text, escaped by the template engine upstream.
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
