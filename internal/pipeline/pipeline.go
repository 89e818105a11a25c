package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pomilon/kognit/internal/archive"
	"github.com/pomilon/kognit/internal/audit"
	"github.com/pomilon/kognit/internal/config"
	"github.com/pomilon/kognit/internal/github"
	"github.com/pomilon/kognit/internal/logger"
	"github.com/pomilon/kognit/internal/models"
	"github.com/pomilon/kognit/internal/normalizer"
	"github.com/pomilon/kognit/internal/refinery"
	"github.com/pomilon/kognit/internal/render"
	"github.com/pomilon/kognit/internal/websearch"
	"github.com/pomilon/kognit/internal/webscrape"
	"go.uber.org/zap"
)

type Options struct {
	Login              string
	Mode               refinery.Mode
	ForceBrowser       bool
	Search             bool
	Humor              int
	Roast              bool
	CustomInstructions string
	OutputPath         string
}

// Run drives a full profile build: harvest, probe, normalize, synthesize,
// validate, render, and optionally archive.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	// Step 1: Harvest the GitHub footprint
	fmt.Printf("Harvesting GitHub profile for %s...\n", opts.Login)
	harvester := github.NewHarvester(cfg.GitHubToken, opts.ForceBrowser)
	rec, err := harvester.FetchProfile(ctx, opts.Login)
	if err != nil {
		return err
	}
	fmt.Printf("  %d repos, %d pinned, %d starred\n", len(rec.Repositories), len(rec.Pinned), len(rec.Starred))

	// Step 2: Optional external probes
	var searchResults []websearch.Result
	external := map[string]string{}
	if opts.Search {
		searchResults = runSearch(ctx, rec)
	}
	if rec.WebsiteURL != "" {
		if content := fetchWebsite(ctx, rec.WebsiteURL); content != "" {
			external["Personal Website ("+rec.WebsiteURL+")"] = content
		}
	}

	// Step 3: Full-dive repository audit
	var report *audit.Report
	if opts.Mode == refinery.ModeFullDive {
		fmt.Printf("Running full-dive audit on up to %d repos...\n", audit.DefaultMaxRepos)
		analyzer := audit.NewLLMAnalyzer(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, opts.Humor, opts.Roast)
		report, err = audit.NewAggregator(analyzer).Run(ctx, auditTargets(rec))
		if err != nil {
			return fmt.Errorf("running audit: %w", err)
		}
		fmt.Printf("  Audited %d repos\n", len(report.Analyses))
	}

	// Step 4: Normalize into a bounded context document
	normOpts := normalizer.Options{
		External:       external,
		SearchResults:  searchResults,
		IncludeReadmes: true,
	}
	if report != nil {
		normOpts.Audit = report.Analyses
	}
	contextDoc := normalizer.Render(rec, normOpts)

	// Step 5: Synthesize the identity narrative
	fmt.Println("Synthesizing developer identity...")
	engine := refinery.NewEngine(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	identity, err := engine.Synthesize(ctx, contextDoc, refinery.Options{
		Mode:               opts.Mode,
		CustomInstructions: opts.CustomInstructions,
		Humor:              opts.Humor,
		Roast:              opts.Roast,
	})
	if err != nil {
		return fmt.Errorf("synthesizing identity: %w", err)
	}
	refinery.Reconcile(identity, rec)
	if report != nil {
		identity.RepositoryAnalyses = report.Analyses
	}

	// Step 6: Validate outbound links
	refinery.NewValidator().Refine(ctx, identity)

	// Step 7: Render the report
	if err := render.WriteHTML(identity, opts.OutputPath); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Printf("Report written to %s\n", opts.OutputPath)

	// Step 8: Archive the snapshot when a store is configured
	if cfg.ArchiveEnabled() {
		archiveSnapshot(ctx, cfg, rec, identity.RepositoryAnalyses)
	}
	return nil
}

// Harvest fetches and normalizes a profile without any generation pass.
// With a .json output path the raw record is dumped instead of markdown.
func Harvest(ctx context.Context, cfg *config.Config, opts Options) error {
	harvester := github.NewHarvester(cfg.GitHubToken, opts.ForceBrowser)
	rec, err := harvester.FetchProfile(ctx, opts.Login)
	if err != nil {
		return err
	}

	var out []byte
	if strings.HasSuffix(opts.OutputPath, ".json") {
		out, err = json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
	} else {
		out = []byte(normalizer.Render(rec, normalizer.Options{IncludeReadmes: true}))
	}

	if opts.OutputPath == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := os.WriteFile(opts.OutputPath, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", opts.OutputPath, err)
	}
	fmt.Printf("Harvest written to %s\n", opts.OutputPath)
	return nil
}

func runSearch(ctx context.Context, rec *models.ProfileRecord) []websearch.Result {
	query := rec.Name
	if query == "" {
		query = rec.Login
	}
	fmt.Printf("Searching the web for %q...\n", query)
	results, err := websearch.NewClient().SearchDeveloper(ctx, query, websearch.DefaultMaxResults)
	if err != nil {
		logger.Warn("web search failed", zap.Error(err))
		return nil
	}
	fmt.Printf("  %d results\n", len(results))
	return results
}

func fetchWebsite(ctx context.Context, siteURL string) string {
	if !strings.HasPrefix(siteURL, "http") {
		siteURL = "https://" + siteURL
	}
	fmt.Printf("Fetching personal website %s...\n", siteURL)
	content, err := webscrape.NewClient().FetchPage(ctx, siteURL)
	if err != nil {
		logger.Warn("website fetch failed", zap.String("url", siteURL), zap.Error(err))
		return ""
	}
	return content
}

// auditTargets puts pinned repos first so the dive spends its budget on
// the work the developer chose to showcase.
func auditTargets(rec *models.ProfileRecord) []models.RepositorySummary {
	seen := make(map[string]bool, len(rec.Pinned))
	targets := make([]models.RepositorySummary, 0, len(rec.Pinned)+len(rec.Repositories))
	for _, r := range rec.Pinned {
		seen[r.Name] = true
		targets = append(targets, r)
	}
	for _, r := range rec.Repositories {
		if !seen[r.Name] {
			targets = append(targets, r)
		}
	}
	return targets
}

func archiveSnapshot(ctx context.Context, cfg *config.Config, rec *models.ProfileRecord, analyses []models.RepoAnalysis) {
	fmt.Println("Archiving snapshot to SurrealDB...")
	db, err := archive.NewClient(ctx, cfg)
	if err != nil {
		logger.Warn("archive connect failed", zap.Error(err))
		return
	}
	defer func() { _ = db.Close(ctx) }()

	if err := db.InitSchema(ctx); err != nil {
		logger.Warn("archive schema init failed", zap.Error(err))
		return
	}
	if err := db.SaveSnapshot(ctx, rec, analyses); err != nil {
		logger.Warn("archive save failed", zap.Error(err))
		return
	}
	fmt.Println("  Snapshot archived")
}
