package analyze

import (
	"context"
	"testing"
)

func TestLexicalSentiment(t *testing.T) {
	c := NewLexicalClassifier()

	tests := []struct {
		text     string
		expected Sentiment
	}{
		{"This breakthrough is a promising milestone", SentimentPositive},
		{"Critics call it overhyped and flawed", SentimentNegative},
		{"The committee met on Tuesday", SentimentNeutral},
	}

	for _, tc := range tests {
		cls, err := c.Classify(context.Background(), tc.text)
		if err != nil {
			t.Fatalf("Classify failed: %v", err)
		}
		if cls.Sentiment != tc.expected {
			t.Errorf("sentiment for %q = %s, want %s", tc.text, cls.Sentiment, tc.expected)
		}
	}
}

func TestLexicalOpinionDetection(t *testing.T) {
	c := NewLexicalClassifier()

	cls, _ := c.Classify(context.Background(), "Researchers believe the approach should scale")
	if !cls.IsOpinion {
		t.Error("opinion markers should flag as opinion")
	}

	cls, _ = c.Classify(context.Background(), "The meeting is scheduled for Monday")
	if cls.IsOpinion {
		t.Error("plain factual text should not flag as opinion")
	}
}

func TestLexicalToolExtraction(t *testing.T) {
	c := NewLexicalClassifier()

	cls, _ := c.Classify(context.Background(), "Teams adopt the Bazel toolkit while the backend is written in Go")
	if len(cls.ToolMentions) != 2 {
		t.Fatalf("expected 2 tools, got %v", cls.ToolMentions)
	}
	if cls.ToolMentions[0] != "Bazel" || cls.ToolMentions[1] != "Go" {
		t.Errorf("unexpected tool mentions: %v", cls.ToolMentions)
	}
}

func TestLexicalToolDedup(t *testing.T) {
	c := NewLexicalClassifier()

	cls, _ := c.Classify(context.Background(), "The React framework and tools like React dominate")
	if len(cls.ToolMentions) != 1 {
		t.Errorf("case-insensitive dedup failed: %v", cls.ToolMentions)
	}
}

func TestLexicalExpertType(t *testing.T) {
	c := NewLexicalClassifier()

	cls, _ := c.Classify(context.Background(), "A university professor published a study on the topic")
	if cls.ExpertType != "researcher" {
		t.Errorf("expected researcher, got %q", cls.ExpertType)
	}

	cls, _ = c.Classify(context.Background(), "The startup founder announced a pivot")
	if cls.ExpertType != "industry" {
		t.Errorf("expected industry, got %q", cls.ExpertType)
	}

	cls, _ = c.Classify(context.Background(), "Nothing expert-flavored here")
	if cls.ExpertType != "" {
		t.Errorf("expected no expert type, got %q", cls.ExpertType)
	}
}

func TestLexicalConfidenceBounds(t *testing.T) {
	c := NewLexicalClassifier()

	texts := []string{
		"",
		"plain text",
		"breakthrough promising impressive excellent powerful milestone success believe think argue",
	}
	for _, text := range texts {
		cls, _ := c.Classify(context.Background(), text)
		if cls.Confidence < 0 || cls.Confidence > 1 {
			t.Errorf("confidence out of range for %q: %g", text, cls.Confidence)
		}
	}
}

func TestLexicalDeterministic(t *testing.T) {
	c := NewLexicalClassifier()
	text := "Critics argue the Rust compiler is impressive but the tooling has risks"

	first, _ := c.Classify(context.Background(), text)
	for i := 0; i < 5; i++ {
		again, _ := c.Classify(context.Background(), text)
		if again.Sentiment != first.Sentiment || again.Confidence != first.Confidence ||
			again.IsOpinion != first.IsOpinion || again.ExpertType != first.ExpertType {
			t.Fatal("classification not deterministic")
		}
	}
}
