// Package archive persists harvest snapshots to SurrealDB. The store is
// optional: the pipeline only opens it when an endpoint is configured, and
// a harvest is never failed over an archival problem.
package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pomilon/kognit/internal/config"
	"github.com/pomilon/kognit/internal/models"
	sdk "github.com/surrealdb/surrealdb.go"
)

type Client struct {
	db *sdk.DB
}

func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	db, err := sdk.FromEndpointURLString(ctx, cfg.SurrealURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, sdk.Auth{
		Namespace: cfg.SurrealNS,
		Database:  cfg.SurrealDB,
		Username:  cfg.SurrealUser,
		Password:  cfg.SurrealPass,
	}); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("signing in: %w", err)
	}

	if err := db.Use(ctx, cfg.SurrealNS, cfg.SurrealDB); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("selecting ns/db: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close(ctx)
}

func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
DEFINE TABLE IF NOT EXISTS profile SCHEMAFULL;

DEFINE FIELD IF NOT EXISTS login         ON TABLE profile TYPE string;
DEFINE FIELD IF NOT EXISTS name          ON TABLE profile TYPE string;
DEFINE FIELD IF NOT EXISTS bio           ON TABLE profile TYPE option<string>;
DEFINE FIELD IF NOT EXISTS company       ON TABLE profile TYPE option<string>;
DEFINE FIELD IF NOT EXISTS location      ON TABLE profile TYPE option<string>;
DEFINE FIELD IF NOT EXISTS website_url   ON TABLE profile TYPE option<string>;
DEFINE FIELD IF NOT EXISTS followers     ON TABLE profile TYPE int;
DEFINE FIELD IF NOT EXISTS following     ON TABLE profile TYPE int;
DEFINE FIELD IF NOT EXISTS contributions ON TABLE profile TYPE int;
DEFINE FIELD IF NOT EXISTS harvested_at  ON TABLE profile TYPE datetime;

DEFINE INDEX IF NOT EXISTS idx_login ON TABLE profile FIELDS login UNIQUE;

DEFINE TABLE IF NOT EXISTS repo SCHEMAFULL;

DEFINE FIELD IF NOT EXISTS login        ON TABLE repo TYPE string;
DEFINE FIELD IF NOT EXISTS name         ON TABLE repo TYPE string;
DEFINE FIELD IF NOT EXISTS url          ON TABLE repo TYPE string;
DEFINE FIELD IF NOT EXISTS description  ON TABLE repo TYPE option<string>;
DEFINE FIELD IF NOT EXISTS language     ON TABLE repo TYPE option<string>;
DEFINE FIELD IF NOT EXISTS stars        ON TABLE repo TYPE int;
DEFINE FIELD IF NOT EXISTS pinned       ON TABLE repo TYPE bool;
DEFINE FIELD IF NOT EXISTS commit_count ON TABLE repo TYPE option<int>;
DEFINE FIELD IF NOT EXISTS complexity   ON TABLE repo TYPE option<int>;
DEFINE FIELD IF NOT EXISTS technologies ON TABLE repo TYPE option<array<string>>;
DEFINE FIELD IF NOT EXISTS harvested_at ON TABLE repo TYPE datetime;

DEFINE INDEX IF NOT EXISTS idx_repo_key ON TABLE repo FIELDS login, name UNIQUE;
`
	_, err := sdk.Query[any](ctx, c.db, schema, nil)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// SaveSnapshot upserts the profile row plus one row per repository,
// folding in the audit scores when a dive ran.
func (c *Client) SaveSnapshot(ctx context.Context, rec *models.ProfileRecord, analyses []models.RepoAnalysis) error {
	now := time.Now().UTC()

	profileData := map[string]any{
		"login":         rec.Login,
		"name":          rec.Name,
		"followers":     rec.Followers,
		"following":     rec.Following,
		"contributions": rec.Contributions.Total,
		"harvested_at":  now,
	}
	// Only non-empty optionals go in, avoiding CBOR NULL vs SurrealDB
	// NONE mismatch.
	if rec.Bio != "" {
		profileData["bio"] = rec.Bio
	}
	if rec.Company != "" {
		profileData["company"] = rec.Company
	}
	if rec.Location != "" {
		profileData["location"] = rec.Location
	}
	if rec.WebsiteURL != "" {
		profileData["website_url"] = rec.WebsiteURL
	}

	if _, err := sdk.Query[any](ctx, c.db,
		`UPSERT type::thing("profile", $id) MERGE $data`,
		map[string]any{"id": rec.Login, "data": profileData},
	); err != nil {
		return fmt.Errorf("upserting profile %s: %w", rec.Login, err)
	}

	scores := make(map[string]models.RepoAnalysis, len(analyses))
	for _, a := range analyses {
		scores[a.Name] = a
	}
	pinned := make(map[string]bool, len(rec.Pinned))
	for _, p := range rec.Pinned {
		pinned[p.Name] = true
	}

	for _, repo := range rec.Repositories {
		if err := c.upsertRepo(ctx, rec.Login, repo, pinned[repo.Name], scores, now); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) upsertRepo(ctx context.Context, login string, repo models.RepositorySummary, isPinned bool, scores map[string]models.RepoAnalysis, now time.Time) error {
	id := login + "__" + strings.ReplaceAll(repo.Name, "/", "__")
	data := map[string]any{
		"login":        login,
		"name":         repo.Name,
		"url":          repo.URL,
		"stars":        repo.Stars,
		"pinned":       isPinned,
		"harvested_at": now,
	}
	if repo.Description != nil {
		data["description"] = *repo.Description
	}
	if repo.Language != nil {
		data["language"] = *repo.Language
	}
	if repo.Detail != nil {
		data["commit_count"] = repo.Detail.CommitCount
	}
	if a, ok := scores[repo.Name]; ok {
		data["complexity"] = a.ComplexityScore
		techs := a.KeyTechnologies
		if techs == nil {
			techs = []string{}
		}
		data["technologies"] = techs
	}

	_, err := sdk.Query[any](ctx, c.db,
		`UPSERT type::thing("repo", $id) MERGE $data`,
		map[string]any{"id": id, "data": data})
	if err != nil {
		return fmt.Errorf("upserting repo %s: %w", repo.Name, err)
	}
	return nil
}
