// Package search defines the external search provider boundary.
//
// The engine issues provider-ready query strings and consumes ranked
// text snippets; everything about how those snippets are obtained lives
// behind the Provider interface.
package search

import (
	"context"
	"time"
)

// Result is one provider hit.
type Result struct {
	ID          string    // deterministic, derived from the URL
	Text        string    // snippet text
	Source      string    // origin identifier, e.g. a domain
	URL         string    // link to the full item
	RetrievedAt time.Time // when the provider returned it
	RawScore    float64   // provider relevance in [0, 1], 0 if absent
}

// Provider issues a query and returns ranked results.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name returns the provider identifier for logging.
	Name() string

	// Available returns true if the provider is configured and ready.
	Available() bool

	// Search returns up to limit results for the query, most relevant
	// first. Respects ctx cancellation and deadline.
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}
