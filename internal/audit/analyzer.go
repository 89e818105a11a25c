package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pomilon/kognit/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

const analystPrompt = `You are a Senior Code Auditor. Your task is to analyze a single repository based on its README and metadata.

Produce a JSON object with:
1. "summary": A 2-3 sentence summary of the repository.
2. "technical_deconstruction": Your full markdown analysis of architecture, patterns, and code quality.
3. "key_technologies": An array of inferred technologies.
4. "complexity_score": Integer 1-10 rating technical difficulty.

Return ONLY valid JSON. No markdown, no code fences.`

const roastPrompt = `
TONE: ROAST MODE. You are a ruthless, cynical senior engineer. Tear this code apart.
Mock bad patterns, over-engineering, or lack of tests. If the code is actually good,
begrudgingly admit it but find something nitpicky. Be savage but technically accurate.`

const maxReadmeContext = 8000

// LLMAnalyzer asks the generation service for a verdict on one repository.
// A response that refuses the JSON contract but still contains text is
// coerced into the analysis shape with a neutral score rather than treated
// as a failure.
type LLMAnalyzer struct {
	client *openai.Client
	model  string
	humor  int
	roast  bool
}

func NewLLMAnalyzer(baseURL, apiKey, model string, humor int, roast bool) *LLMAnalyzer {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &LLMAnalyzer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		humor:  humor,
		roast:  roast,
	}
}

func (a *LLMAnalyzer) systemPrompt() string {
	prompt := analystPrompt
	if a.roast {
		prompt += roastPrompt
	} else if a.humor > 0 {
		prompt += fmt.Sprintf("\nTONE: Humorous (Level %d/100). Inject wit, sarcasm, and technical jokes. Level 100 means full-blown stand-up comedy style.", a.humor)
	}
	return prompt
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, repo models.RepositorySummary) (models.RepoAnalysis, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: a.systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: repoContext(repo)},
		},
		// No ResponseFormat; not all models support json_object mode.
		// The system prompt instructs the model to return pure JSON.
		Temperature: 0.3,
	})
	if err != nil {
		return models.RepoAnalysis{}, fmt.Errorf("analysis call for %s: %w", repo.Name, err)
	}
	if len(resp.Choices) == 0 {
		return models.RepoAnalysis{}, fmt.Errorf("no choices returned for %s", repo.Name)
	}

	content := StripCodeFences(resp.Choices[0].Message.Content)

	var result models.RepoAnalysis
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		if strings.TrimSpace(content) == "" {
			return models.RepoAnalysis{}, fmt.Errorf("empty analysis for %s", repo.Name)
		}
		// The model chatted instead of answering in JSON. Keep the text.
		return models.RepoAnalysis{
			Name:                    repo.Name,
			Summary:                 "Recovered from raw model output.",
			TechnicalDeconstruction: content,
			KeyTechnologies:         []string{"Inferred"},
			ComplexityScore:         5,
		}, nil
	}

	if result.Name == "" {
		result.Name = repo.Name
	}
	return result, nil
}

func repoContext(repo models.RepositorySummary) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Repository: %s", repo.Name))
	if repo.Description != nil {
		parts = append(parts, fmt.Sprintf("Description: %s", *repo.Description))
	}
	if len(repo.Languages) > 0 {
		parts = append(parts, fmt.Sprintf("Languages: %s", strings.Join(repo.Languages, ", ")))
	}
	parts = append(parts, fmt.Sprintf("Stars: %d", repo.Stars))

	if d := repo.Detail; d != nil {
		if len(d.RecentCommits) > 0 {
			parts = append(parts, fmt.Sprintf("Recent commits: %s", strings.Join(d.RecentCommits, " | ")))
		}
		if d.Readme != nil {
			readme := *d.Readme
			if len(readme) > maxReadmeContext {
				readme = readme[:maxReadmeContext]
			}
			parts = append(parts, fmt.Sprintf("README Content:\n%s", readme))
		}
	}

	return strings.Join(parts, "\n\n")
}

// StripCodeFences removes markdown code fences that some models wrap
// around JSON.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		}
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
