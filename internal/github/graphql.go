package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pomilon/kognit/internal/models"
	"golang.org/x/oauth2"
)

const graphqlEndpoint = "https://api.github.com/graphql"

// profileQuery is the one-shot aggregate query for structured-query mode:
// identity, contribution totals, pinned items, the first 100 non-fork
// repositories by stars, and the 20 most recently starred repositories.
// Each repository node embeds its own README blob, default-branch commit
// history, and root tree so no follow-up fetches are needed in this mode.
const profileQuery = `
query($login: String!) {
  user(login: $login) {
    name
    login
    bio
    websiteUrl
    location
    company
    twitterUsername
    avatarUrl

    followers { totalCount }
    following { totalCount }

    pinnedItems(first: 6, types: [REPOSITORY, GIST]) {
      nodes {
        ... on Repository {
          name
          description
          url
          stargazerCount
          primaryLanguage { name }
          languages(first: 5) { nodes { name } }
          readme: object(expression: "HEAD:README.md") {
            ... on Blob { text }
          }
          defaultBranchRef {
            target {
              ... on Commit {
                history(first: 4) {
                  totalCount
                  nodes { message }
                }
              }
            }
          }
          tree: object(expression: "HEAD:") {
            ... on Tree { entries { name type } }
          }
        }
        ... on Gist {
          name
          description
          url
        }
      }
    }

    repositories(first: 100, orderBy: {field: STARGAZERS, direction: DESC}, isFork: false) {
      nodes {
        name
        description
        url
        stargazerCount
        isFork
        pushedAt
        primaryLanguage { name }
        languages(first: 5) { nodes { name } }
        readme: object(expression: "HEAD:README.md") {
          ... on Blob { text }
        }
        defaultBranchRef {
          target {
            ... on Commit {
              history(first: 4) {
                totalCount
                nodes { message }
              }
            }
          }
        }
        tree: object(expression: "HEAD:") {
          ... on Tree { entries { name type } }
        }
      }
    }

    starredRepositories(first: 20, orderBy: {field: STARRED_AT, direction: DESC}) {
      nodes {
        nameWithOwner
        description
        url
      }
    }

    contributionsCollection {
      contributionCalendar { totalContributions }
      totalCommitContributions
      totalPullRequestContributions
      totalIssueContributions
      totalRepositoryContributions
    }
  }
}
`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type countNode struct {
	TotalCount int `json:"totalCount"`
}

type langNode struct {
	Name string `json:"name"`
}

type historyNode struct {
	TotalCount int `json:"totalCount"`
	Nodes      []struct {
		Message string `json:"message"`
	} `json:"nodes"`
}

type repoNode struct {
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	URL             string    `json:"url"`
	StargazerCount  int       `json:"stargazerCount"`
	IsFork          bool      `json:"isFork"`
	PushedAt        *string   `json:"pushedAt"`
	PrimaryLanguage *langNode `json:"primaryLanguage"`
	Languages       struct {
		Nodes []langNode `json:"nodes"`
	} `json:"languages"`
	Readme *struct {
		Text string `json:"text"`
	} `json:"readme"`
	DefaultBranchRef *struct {
		Target struct {
			History historyNode `json:"history"`
		} `json:"target"`
	} `json:"defaultBranchRef"`
	Tree *struct {
		Entries []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"entries"`
	} `json:"tree"`
}

type starredNode struct {
	NameWithOwner string  `json:"nameWithOwner"`
	Description   *string `json:"description"`
	URL           string  `json:"url"`
}

type userNode struct {
	Name            *string   `json:"name"`
	Login           string    `json:"login"`
	Bio             *string   `json:"bio"`
	WebsiteURL      *string   `json:"websiteUrl"`
	Location        *string   `json:"location"`
	Company         *string   `json:"company"`
	TwitterUsername *string   `json:"twitterUsername"`
	AvatarURL       *string   `json:"avatarUrl"`
	Followers       countNode `json:"followers"`
	Following       countNode `json:"following"`
	PinnedItems     struct {
		Nodes []repoNode `json:"nodes"`
	} `json:"pinnedItems"`
	Repositories struct {
		Nodes []repoNode `json:"nodes"`
	} `json:"repositories"`
	StarredRepositories struct {
		Nodes []starredNode `json:"nodes"`
	} `json:"starredRepositories"`
	ContributionsCollection struct {
		ContributionCalendar struct {
			TotalContributions int `json:"totalContributions"`
		} `json:"contributionCalendar"`
		TotalCommitContributions      int `json:"totalCommitContributions"`
		TotalPullRequestContributions int `json:"totalPullRequestContributions"`
		TotalIssueContributions       int `json:"totalIssueContributions"`
		TotalRepositoryContributions  int `json:"totalRepositoryContributions"`
	} `json:"contributionsCollection"`
}

type profileData struct {
	User *userNode `json:"user"`
}

// fetchViaAPI runs the aggregate query and adapts the response into a
// ProfileRecord. Any transport or response-level error propagates so the
// harvester can degrade to page scraping.
func (h *Harvester) fetchViaAPI(ctx context.Context, login string) (*models.ProfileRecord, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: h.Token})
	client := oauth2.NewClient(ctx, ts)
	client.Timeout = h.Timeout

	body, err := doGraphQL(ctx, client, h.APIURL, profileQuery, map[string]any{"login": login})
	if err != nil {
		return nil, err
	}

	var data profileData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if data.User == nil {
		return nil, fmt.Errorf("no user node for %q", login)
	}

	return userToRecord(data.User), nil
}

func doGraphQL(ctx context.Context, client *http.Client, endpoint, query string, variables map[string]any) (json.RawMessage, error) {
	reqBody, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return nil, fmt.Errorf("parsing GraphQL response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("GraphQL error: %s", gqlResp.Errors[0].Message)
	}

	return gqlResp.Data, nil
}

func userToRecord(u *userNode) *models.ProfileRecord {
	rec := &models.ProfileRecord{
		Name:          deref(u.Name),
		Login:         u.Login,
		AvatarURL:     deref(u.AvatarURL),
		Bio:           deref(u.Bio),
		Company:       deref(u.Company),
		Location:      deref(u.Location),
		WebsiteURL:    deref(u.WebsiteURL),
		TwitterHandle: deref(u.TwitterUsername),
		Followers:     u.Followers.TotalCount,
		Following:     u.Following.TotalCount,
		Contributions: models.ContributionTotals{
			Total:        u.ContributionsCollection.ContributionCalendar.TotalContributions,
			Commits:      u.ContributionsCollection.TotalCommitContributions,
			PullRequests: u.ContributionsCollection.TotalPullRequestContributions,
			Issues:       u.ContributionsCollection.TotalIssueContributions,
			Repositories: u.ContributionsCollection.TotalRepositoryContributions,
		},
	}
	if rec.Name == "" {
		rec.Name = u.Login
	}

	for _, n := range u.PinnedItems.Nodes {
		rec.Pinned = append(rec.Pinned, nodeToSummary(n))
	}
	for _, n := range u.Repositories.Nodes {
		rec.Repositories = append(rec.Repositories, nodeToSummary(n))
	}
	for _, n := range u.StarredRepositories.Nodes {
		rec.Starred = append(rec.Starred, models.StarredRepo{
			NameWithOwner: n.NameWithOwner,
			Description:   deref(n.Description),
			URL:           n.URL,
		})
	}

	return rec
}

func nodeToSummary(n repoNode) models.RepositorySummary {
	s := models.RepositorySummary{
		Name:        n.Name,
		Description: n.Description,
		URL:         n.URL,
		Stars:       n.StargazerCount,
		IsFork:      n.IsFork,
		PushedAt:    deref(n.PushedAt),
		Detail:      n.detail(),
	}
	if n.PrimaryLanguage != nil {
		s.Language = &n.PrimaryLanguage.Name
	}
	for _, l := range n.Languages.Nodes {
		s.Languages = append(s.Languages, l.Name)
	}
	return s
}

// detail walks the nullable README/history/tree sub-trees. Each step that
// is absent simply leaves its field empty; a node with none of them (a
// pinned gist, say) yields a nil detail.
func (n repoNode) detail() *models.RepositoryDetail {
	if n.Readme == nil && n.DefaultBranchRef == nil && n.Tree == nil {
		return nil
	}

	d := &models.RepositoryDetail{}
	if n.Readme != nil && n.Readme.Text != "" {
		text := n.Readme.Text
		d.Readme = &text
	}
	if n.DefaultBranchRef != nil {
		h := n.DefaultBranchRef.Target.History
		d.CommitCount = h.TotalCount
		seen := make(map[string]bool)
		for _, c := range h.Nodes {
			if c.Message == "" || seen[c.Message] {
				continue
			}
			seen[c.Message] = true
			d.RecentCommits = append(d.RecentCommits, c.Message)
			if len(d.RecentCommits) >= maxRecentCommits {
				break
			}
		}
	}
	if n.Tree != nil {
		seen := make(map[string]bool)
		for _, e := range n.Tree.Entries {
			if e.Name == "" || seen[e.Name] {
				continue
			}
			seen[e.Name] = true
			d.RootEntries = append(d.RootEntries, models.RootEntry{
				Name:  e.Name,
				IsDir: e.Type == "tree",
			})
		}
	}
	return d
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
