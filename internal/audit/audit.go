// Package audit drives the full-dive analysis path: every harvested
// repository is analyzed in isolation by the generation service, in small
// concurrent batches so the service's rate limits survive the load.
package audit

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pomilon/kognit/internal/logger"
	"github.com/pomilon/kognit/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxRepos caps how many repositories one dive analyzes.
	DefaultMaxRepos = 20
	// DefaultBatchSize is the per-batch concurrency; batches themselves
	// run strictly one after another.
	DefaultBatchSize = 3
)

// Analyzer produces one verdict per repository.
type Analyzer interface {
	Analyze(ctx context.Context, repo models.RepositorySummary) (models.RepoAnalysis, error)
}

// Report is the compiled dive output: analyses sorted by complexity
// (descending, stable for ties) and the consolidated narrative built from
// them.
type Report struct {
	Analyses     []models.RepoAnalysis
	Consolidated string
}

type Aggregator struct {
	analyzer  Analyzer
	maxRepos  int
	batchSize int
}

func NewAggregator(analyzer Analyzer) *Aggregator {
	return &Aggregator{
		analyzer:  analyzer,
		maxRepos:  DefaultMaxRepos,
		batchSize: DefaultBatchSize,
	}
}

// WithLimits overrides the repo cap and batch size; zero keeps the default.
func (ag *Aggregator) WithLimits(maxRepos, batchSize int) *Aggregator {
	if maxRepos > 0 {
		ag.maxRepos = maxRepos
	}
	if batchSize > 0 {
		ag.batchSize = batchSize
	}
	return ag
}

// Run analyzes the capped repository list. A single repository's failure
// never aborts the run; it degrades to a score-0 record. Only an
// infrastructure failure (context cancellation) propagates.
func (ag *Aggregator) Run(ctx context.Context, repos []models.RepositorySummary) (*Report, error) {
	if len(repos) > ag.maxRepos {
		repos = repos[:ag.maxRepos]
	}
	logger.Info("starting deep analysis", zap.Int("repos", len(repos)), zap.Int("batch_size", ag.batchSize))

	analyses := make([]models.RepoAnalysis, len(repos))
	for start := 0; start < len(repos); start += ag.batchSize {
		end := start + ag.batchSize
		if end > len(repos) {
			end = len(repos)
		}

		// Batch N+1 must not start before batch N drains, so every batch
		// gets its own group.
		g, gCtx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				a, err := ag.analyzeOne(gCtx, repos[i])
				if err != nil {
					return err
				}
				analyses[i] = a
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		logger.Info("analysis progress", zap.Int("done", end), zap.Int("total", len(repos)))
	}

	return compile(analyses), nil
}

func (ag *Aggregator) analyzeOne(ctx context.Context, repo models.RepositorySummary) (models.RepoAnalysis, error) {
	a, err := ag.analyzer.Analyze(ctx, repo)
	if err == nil {
		a.ComplexityScore = clampScore(a.ComplexityScore)
		return a, nil
	}
	if ctx.Err() != nil {
		return models.RepoAnalysis{}, ctx.Err()
	}

	logger.Warn("repository analysis failed", zap.String("repo", repo.Name), zap.Error(err))
	return models.RepoAnalysis{
		Name:                    repo.Name,
		Summary:                 "Analysis failed or skipped.",
		TechnicalDeconstruction: fmt.Sprintf("Could not analyze deeply. Error: %s", clipErr(err)),
		KeyTechnologies:         []string{},
		ComplexityScore:         0,
	}, nil
}

// compile stitches the per-repo verdicts into the combined narrative. The
// sort is stable so equally scored repositories keep their harvest order.
func compile(analyses []models.RepoAnalysis) *Report {
	sorted := make([]models.RepoAnalysis, len(analyses))
	copy(sorted, analyses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ComplexityScore > sorted[j].ComplexityScore
	})

	var b strings.Builder
	b.WriteString("# Full-Dive Technical Audit\n\n")
	for _, a := range sorted {
		fmt.Fprintf(&b, "## %s (Complexity: %d/10)\n", a.Name, a.ComplexityScore)
		fmt.Fprintf(&b, "**Tech Stack:** %s\n", strings.Join(a.KeyTechnologies, ", "))
		b.WriteString("### Deconstruction\n")
		b.WriteString(a.TechnicalDeconstruction)
		b.WriteString("\n---\n\n")
	}

	return &Report{Analyses: sorted, Consolidated: b.String()}
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 10 {
		return 10
	}
	return n
}

func clipErr(err error) string {
	s := err.Error()
	if len(s) > 500 {
		s = s[:500] + "..."
	}
	return s
}
