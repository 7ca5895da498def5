package engine

import (
	"time"

	"github.com/abelbrown/zeitgeist/internal/analyze"
	"github.com/abelbrown/zeitgeist/internal/search"
)

// ZeitgeistResult is the full snapshot returned by GetZeitgeist.
// An empty SearchResults slice is the ordinary "nothing found" outcome,
// not an error.
type ZeitgeistResult struct {
	Topic         string          `json:"topic"`
	Summary       string          `json:"summary"`
	SearchResults []search.Result `json:"search_results"`
	QueriesUsed   []string        `json:"queries_used"`
	Timestamp     time.Time       `json:"timestamp"`
}

// OpinionsResult is returned by GetRoleOpinions.
type OpinionsResult struct {
	Topic     string            `json:"topic"`
	Role      string            `json:"role"`
	Opinions  []analyze.Opinion `json:"opinions"`
	Timestamp time.Time         `json:"timestamp"`
}

// ToolsResult is returned by GetTrendingTools.
type ToolsResult struct {
	Topic     string                 `json:"topic"`
	Tools     []analyze.TrendingTool `json:"tools"`
	Timestamp time.Time              `json:"timestamp"`
}

// PerspectivesResult is returned by GetExpertPerspectives.
type PerspectivesResult struct {
	Topic        string                      `json:"topic"`
	Perspectives []analyze.ExpertPerspective `json:"perspectives"`
	Timestamp    time.Time                   `json:"timestamp"`
}
