// Package analyze distills filtered search results into typed opinions,
// trending tools, and expert perspectives.
package analyze

import "context"

// Sentiment is a categorical sentiment label.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Classification is the classifier's judgment of a single snippet.
type Classification struct {
	Sentiment    Sentiment
	IsOpinion    bool     // snippet expresses a stance, not just facts
	ToolMentions []string // tool/product names mentioned
	ExpertType   string   // expertise category, "" if none detected
	Confidence   float64  // classifier confidence in [0, 1]
}

// Classifier is the external text classification boundary.
// Implementations must be safe for concurrent use.
type Classifier interface {
	// Name returns the classifier identifier for logging.
	Name() string

	// Available returns true if the classifier is ready.
	Available() bool

	// Classify judges a single snippet.
	Classify(ctx context.Context, text string) (Classification, error)
}
