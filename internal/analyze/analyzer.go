package analyze

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/abelbrown/zeitgeist/internal/logging"
	"github.com/abelbrown/zeitgeist/internal/search"
)

// Opinion is one stance extracted from a search result.
type Opinion struct {
	Text       string    `json:"text"`
	Sentiment  Sentiment `json:"sentiment"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
}

// TrendingTool is a tool/product ranked by mention frequency.
type TrendingTool struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	PopularityScore float64 `json:"popularity_score"`
	Source          string  `json:"source"`
}

// ExpertPerspective is a summarized expert take on the topic.
type ExpertPerspective struct {
	Summary    string  `json:"summary"`
	ExpertType string  `json:"expert_type"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Analysis is the analyzer's full output for one result set.
type Analysis struct {
	Opinions     []Opinion
	Tools        []TrendingTool
	Perspectives []ExpertPerspective
}

// perspectiveMaxLen caps expert perspective summaries.
const perspectiveMaxLen = 240

// Analyzer converts filtered results into typed outputs using a
// Classifier. Classification confidence below the floor drops the
// derived item; this is a second pass on top of the content filter,
// which only sees raw provider scores.
type Analyzer struct {
	classifier    Classifier
	minConfidence float64
}

// New creates an Analyzer with the given classifier and confidence floor.
func New(classifier Classifier, minConfidence float64) *Analyzer {
	return &Analyzer{classifier: classifier, minConfidence: minConfidence}
}

// toolStat accumulates mention counts for one tool name.
type toolStat struct {
	name        string // casing of the first mention
	mentions    int    // number of results mentioning the tool
	firstSeen   int    // index of the earliest mentioning result
	description string
	source      string
}

// Analyze classifies every result and assembles the three output
// categories. A classifier failure on one snippet means that snippet
// yields nothing; it never fails the whole call.
func (a *Analyzer) Analyze(ctx context.Context, results []search.Result, topic string) Analysis {
	var analysis Analysis
	toolStats := make(map[string]*toolStat)

	for i, r := range results {
		if ctx.Err() != nil {
			break
		}

		cls, err := a.classifier.Classify(ctx, r.Text)
		if err != nil {
			logging.Debug("classifier failed, skipping snippet", "classifier", a.classifier.Name(), "source", r.Source, "err", err)
			continue
		}

		confidence := clip(cls.Confidence)
		if confidence < a.minConfidence {
			continue
		}

		if cls.IsOpinion {
			analysis.Opinions = append(analysis.Opinions, Opinion{
				Text:       r.Text,
				Sentiment:  cls.Sentiment,
				Confidence: confidence,
				Source:     r.Source,
			})
		}

		for _, name := range cls.ToolMentions {
			key := strings.ToLower(name)
			if stat, ok := toolStats[key]; ok {
				stat.mentions++
			} else {
				toolStats[key] = &toolStat{
					name:        name,
					mentions:    1,
					firstSeen:   i,
					description: truncate(r.Text, perspectiveMaxLen),
					source:      r.Source,
				}
			}
		}

		if cls.ExpertType != "" {
			analysis.Perspectives = append(analysis.Perspectives, ExpertPerspective{
				Summary:    fmt.Sprintf("%s perspective: %s", cls.ExpertType, truncate(r.Text, perspectiveMaxLen)),
				ExpertType: cls.ExpertType,
				Confidence: confidence,
				Source:     r.Source,
			})
		}
	}

	analysis.Tools = rankTools(toolStats, len(results))
	return analysis
}

// rankTools normalizes mention counts to popularity scores and sorts by
// popularity, breaking ties by earliest appearance.
func rankTools(stats map[string]*toolStat, total int) []TrendingTool {
	if len(stats) == 0 || total == 0 {
		return nil
	}

	ordered := make([]*toolStat, 0, len(stats))
	for _, s := range stats {
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].mentions != ordered[j].mentions {
			return ordered[i].mentions > ordered[j].mentions
		}
		return ordered[i].firstSeen < ordered[j].firstSeen
	})

	tools := make([]TrendingTool, 0, len(ordered))
	for _, s := range ordered {
		score := float64(s.mentions) / float64(total)
		if score > 1 {
			score = 1
		}
		tools = append(tools, TrendingTool{
			Name:            s.name,
			Description:     s.description,
			PopularityScore: score,
			Source:          s.source,
		})
	}
	return tools
}

func clip(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
