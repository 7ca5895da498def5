package analyze

import (
	"context"
	"regexp"
	"strings"
)

var positiveWords = []string{
	"breakthrough", "promising", "impressive", "excellent", "powerful",
	"milestone", "success", "innovative", "robust", "elegant", "thriving",
	"gains", "improves", "improved", "advances", "love", "landmark",
}

var negativeWords = []string{
	"failure", "flawed", "overhyped", "disappointing", "broken", "concern",
	"concerns", "risk", "risks", "skeptical", "skeptics", "decline",
	"vulnerability", "criticism", "criticized", "warns", "warning", "doubt",
}

var opinionMarkers = []string{
	"believe", "believes", "think", "thinks", "argue", "argues", "claim",
	"claims", "should", "opinion", "perspective", "view", "critics",
	"proponents", "debate", "according to", "suggests", "predicts",
	"expects", "worries", "hopes",
}

// expertKeywords maps expertise categories to their lexical cues.
// Category order matters for ties; earlier categories win.
var expertCategories = []struct {
	category string
	keywords []string
}{
	{"researcher", []string{"research", "study", "professor", "university", "paper", "scientists", "phd", "laboratory"}},
	{"analyst", []string{"analyst", "forecast", "market research", "quarterly", "report projects"}},
	{"industry", []string{"cto", "ceo", "founder", "engineer at", "startup", "company announced", "vp of"}},
	{"practitioner", []string{"developer", "engineer", "practitioner", "in production", "maintainer"}},
}

// toolPatterns extract tool/product names from snippet text.
var toolPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b([A-Z][A-Za-z0-9.+_-]{1,29})\s+(?:framework|library|toolkit|compiler|database|runtime|SDK|IDE|CLI)\b`),
	regexp.MustCompile(`(?:frameworks?|libraries|tools?|platforms?)\s+(?:like|such as)\s+([A-Z][A-Za-z0-9.+_-]{1,29})`),
	regexp.MustCompile(`\b(?:built|powered|written)\s+(?:with|in|on)\s+([A-Z][A-Za-z0-9.+_-]{1,29})\b`),
}

// LexicalClassifier classifies snippets with keyword heuristics. It is
// deterministic and needs no network, which makes it the default
// classifier and the reference for tests.
type LexicalClassifier struct{}

// NewLexicalClassifier returns the default classifier.
func NewLexicalClassifier() *LexicalClassifier {
	return &LexicalClassifier{}
}

// Name returns the classifier identifier for logging.
func (c *LexicalClassifier) Name() string {
	return "lexical"
}

// Available always returns true.
func (c *LexicalClassifier) Available() bool {
	return true
}

// Classify judges a snippet by counting lexical signals. Confidence
// grows with signal count and is capped below 1.
func (c *LexicalClassifier) Classify(_ context.Context, text string) (Classification, error) {
	lower := strings.ToLower(text)

	pos := countMatches(lower, positiveWords)
	neg := countMatches(lower, negativeWords)

	sentiment := SentimentNeutral
	switch {
	case pos > neg:
		sentiment = SentimentPositive
	case neg > pos:
		sentiment = SentimentNegative
	}

	markers := countMatches(lower, opinionMarkers)
	isOpinion := markers > 0 || sentiment != SentimentNeutral

	expertType := ""
	expertSignals := 0
	for _, ec := range expertCategories {
		if n := countMatches(lower, ec.keywords); n > 0 {
			expertType = ec.category
			expertSignals = n
			break
		}
	}

	tools := extractTools(text)

	signals := pos + neg + markers + expertSignals + len(tools)
	confidence := 0.5 + 0.1*float64(signals)
	if confidence > 0.95 {
		confidence = 0.95
	}

	return Classification{
		Sentiment:    sentiment,
		IsOpinion:    isOpinion,
		ToolMentions: tools,
		ExpertType:   expertType,
		Confidence:   confidence,
	}, nil
}

func countMatches(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	return count
}

// extractTools pulls tool names from the snippet, deduplicated
// case-insensitively, in order of first appearance.
func extractTools(text string) []string {
	var tools []string
	seen := make(map[string]bool)
	for _, re := range toolPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimRight(m[1], ".,;:")
			key := strings.ToLower(name)
			if name == "" || seen[key] {
				continue
			}
			seen[key] = true
			tools = append(tools, name)
		}
	}
	return tools
}
