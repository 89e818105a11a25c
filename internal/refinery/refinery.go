// Package refinery turns a normalized context document into a structured
// DeveloperIdentity via the generation service, then validates the
// identity's external links.
package refinery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pomilon/kognit/internal/audit"
	"github.com/pomilon/kognit/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// Mode selects the synthesis emphasis.
type Mode string

const (
	ModeSummary     Mode = "summary"
	ModeDeepDive    Mode = "deep-dive"
	ModeConnections Mode = "connections"
	ModeFullDive    Mode = "full-dive"
)

const basePrompt = `You are a Technical Biographer. Given a developer's digital footprint,
synthesize a structured identity profile.

Produce a JSON object with exactly these fields:
  "name", "headline", "summary" (multi-paragraph markdown biography),
  "technical_dna": {"languages", "frameworks", "tools", "specialization"},
  "project_highlights": [{"name", "description", "technical_complexity", "impact", "technologies", "role", "url"}],
  "external_footprint": {"writing_style", "interests", "community_signals"},
  "role_inference",
  "external_links" (only links that literally appear in the footprint),
  "technical_depth_report" (markdown, may be empty),
  "ecosystem_report" (markdown, may be empty).

Never invent metrics or links that are not present in the footprint.
Return ONLY valid JSON. No markdown, no code fences.`

type Options struct {
	Mode               Mode
	CustomInstructions string
	Humor              int
	Roast              bool
}

// Engine calls the generation service.
type Engine struct {
	client *openai.Client
	model  string
}

func NewEngine(baseURL, apiKey, model string) *Engine {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &Engine{client: openai.NewClientWithConfig(cfg), model: model}
}

func buildPrompt(opts Options) string {
	prompt := basePrompt

	switch opts.Mode {
	case ModeDeepDive, ModeFullDive:
		prompt += "\n\nEMPHASIS: Deep technical analysis. Fill technical_depth_report with an architectural deconstruction of the most significant projects."
	case ModeConnections:
		prompt += "\n\nEMPHASIS: Ecosystem and community. Fill ecosystem_report with an analysis of the developer's reach, influence, and connections."
	}

	if opts.Roast {
		prompt += "\n\nTONE: ROAST MODE. Ruthlessly critique the profile. Savage but technically accurate."
	} else if opts.Humor > 0 {
		prompt += fmt.Sprintf("\n\nTONE: Humorous (Level %d/100).", opts.Humor)
	}

	if opts.CustomInstructions != "" {
		prompt += "\n\nADDITIONAL INSTRUCTIONS:\n" + opts.CustomInstructions
	}
	return prompt
}

// Synthesize generates the identity from the context document.
func (e *Engine) Synthesize(ctx context.Context, contextDoc string, opts Options) (*models.DeveloperIdentity, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildPrompt(opts)},
			{Role: openai.ChatMessageRoleUser, Content: contextDoc},
		},
		Temperature: 0.5,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesis call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	content := audit.StripCodeFences(resp.Choices[0].Message.Content)

	var identity models.DeveloperIdentity
	if err := json.Unmarshal([]byte(content), &identity); err != nil {
		return nil, fmt.Errorf("parsing identity response: %w\nraw: %s", err, content)
	}
	return &identity, nil
}

// Reconcile forces the generated identity to agree with the harvested
// record on the facts we actually observed: avatar, display name, and the
// canonical profile link.
func Reconcile(identity *models.DeveloperIdentity, rec *models.ProfileRecord) {
	if rec.AvatarURL != "" {
		identity.AvatarURL = rec.AvatarURL
	}
	if identity.Name == "" && rec.Name != "" {
		identity.Name = rec.Name
	}

	profileLink := "https://github.com/" + rec.Login
	for _, link := range identity.ExternalLinks {
		if link == profileLink {
			return
		}
	}
	identity.ExternalLinks = append([]string{profileLink}, identity.ExternalLinks...)
}
