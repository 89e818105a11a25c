package models

// ContributionTotals holds the yearly activity counters from the
// contributions collection. Page scraping can only recover the calendar
// total; the split counters stay zero in that mode.
type ContributionTotals struct {
	Total        int `json:"total"`
	Commits      int `json:"commits"`
	PullRequests int `json:"pull_requests"`
	Issues       int `json:"issues"`
	Repositories int `json:"repositories"`
}

// RootEntry is one top-level file or directory in a repository.
type RootEntry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
}

// RepositoryDetail is the follow-up data fetched per repository: commit
// history, root listing, and README. It is attached after the summary is
// built; a nil detail is a valid terminal state.
type RepositoryDetail struct {
	CommitCount   int         `json:"commit_count"`
	RecentCommits []string    `json:"recent_commits"` // most recent first, ≤4, de-duplicated
	RootEntries   []RootEntry `json:"root_entries"`
	Readme        *string     `json:"readme"`
}

// RepositorySummary is one repository row from either acquisition mode.
type RepositorySummary struct {
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	URL         string            `json:"url"`
	Language    *string           `json:"language"`
	Languages   []string          `json:"languages"` // ≤5 names
	Stars       int               `json:"stars"`
	IsFork      bool              `json:"is_fork"`
	PushedAt    string            `json:"pushed_at"`
	Detail      *RepositoryDetail `json:"detail"`
}

// StarredRepo is a reference to a repository the user starred. No detail
// fetch is ever performed on these.
type StarredRepo struct {
	NameWithOwner string `json:"name_with_owner"`
	Description   string `json:"description"`
	URL           string `json:"url"`
}

// ProfileRecord is the full harvested profile, identical in shape for both
// acquisition modes so downstream consumers never branch on how the data
// was obtained.
type ProfileRecord struct {
	Name          string             `json:"name"`
	Login         string             `json:"login"`
	AvatarURL     string             `json:"avatar_url"`
	Bio           string             `json:"bio"`
	Company       string             `json:"company"`
	Location      string             `json:"location"`
	WebsiteURL    string             `json:"website_url"`
	TwitterHandle string             `json:"twitter_handle"`
	Followers     int                `json:"followers"`
	Following     int                `json:"following"`
	Contributions ContributionTotals `json:"contributions"`

	// Pinned and Repositories may overlap in identity but are tracked
	// independently. Repositories keeps the source's delivered order.
	Pinned       []RepositorySummary `json:"pinned"`
	Repositories []RepositorySummary `json:"repositories"`
	Starred      []StarredRepo       `json:"starred"`
}
