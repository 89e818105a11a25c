package models

// RepoAnalysis is the audit aggregator's verdict on a single repository.
// A complexity score of 0 means the analysis failed or was skipped; that is
// a legitimate terminal value, not a sentinel to filter out.
type RepoAnalysis struct {
	Name                    string   `json:"name"`
	Summary                 string   `json:"summary"`
	TechnicalDeconstruction string   `json:"technical_deconstruction"`
	KeyTechnologies         []string `json:"key_technologies"`
	ComplexityScore         int      `json:"complexity_score"` // 0..10
}

// TechnicalDNA summarizes the stack the narrative generator inferred.
type TechnicalDNA struct {
	Languages      []string `json:"languages"`
	Frameworks     []string `json:"frameworks"`
	Tools          []string `json:"tools"`
	Specialization string   `json:"specialization"`
}

// ProjectHighlight is one showcased project in the generated identity.
type ProjectHighlight struct {
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	TechnicalComplexity string   `json:"technical_complexity"`
	Impact              string   `json:"impact"`
	Technologies        []string `json:"technologies"`
	Role                string   `json:"role"`
	URL                 string   `json:"url"`
}

// ExternalFootprint captures signals found outside GitHub.
type ExternalFootprint struct {
	WritingStyle     string   `json:"writing_style"`
	Interests        []string `json:"interests"`
	CommunitySignals []string `json:"community_signals"`
}

// DeveloperIdentity is the structured record the narrative generator
// produces from a normalized context document.
type DeveloperIdentity struct {
	Name              string             `json:"name"`
	AvatarURL         string             `json:"avatar_url"`
	Headline          string             `json:"headline"`
	Summary           string             `json:"summary"`
	TechnicalDNA      TechnicalDNA       `json:"technical_dna"`
	ProjectHighlights []ProjectHighlight `json:"project_highlights"`
	ExternalFootprint ExternalFootprint  `json:"external_footprint"`
	RoleInference     string             `json:"role_inference"`
	ExternalLinks     []string           `json:"external_links"`

	// Markdown reports produced by the deep-dive and connections modes.
	TechnicalDepthReport string `json:"technical_depth_report,omitempty"`
	EcosystemReport      string `json:"ecosystem_report,omitempty"`

	// Full-dive data, attached directly rather than re-generated.
	RepositoryAnalyses []RepoAnalysis `json:"repository_analyses,omitempty"`
}
