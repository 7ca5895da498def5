// Package engine orchestrates the zeitgeist pipeline: query generation,
// caching, rate limiting, concurrent provider search, content filtering,
// and opinion analysis.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/zeitgeist/internal/analyze"
	"github.com/abelbrown/zeitgeist/internal/cache"
	"github.com/abelbrown/zeitgeist/internal/config"
	"github.com/abelbrown/zeitgeist/internal/filter"
	"github.com/abelbrown/zeitgeist/internal/logging"
	"github.com/abelbrown/zeitgeist/internal/query"
	"github.com/abelbrown/zeitgeist/internal/ratelimit"
	"github.com/abelbrown/zeitgeist/internal/search"
)

// Options configures collaborators and policy at construction.
type Options struct {
	// Provider overrides the default Google News RSS provider.
	Provider search.Provider

	// Classifier overrides the default lexical classifier.
	Classifier analyze.Classifier

	// Strict makes rate exhaustion and total provider failure surface
	// as errors. The default is best-effort: degraded requests return
	// whatever cached or fetched results exist, down to an empty but
	// well-formed payload.
	Strict bool
}

// Engine is the zeitgeist aggregation engine. One instance is
// constructed per configuration and shared by reference across
// concurrent requests; the rate limiter and cache are the only mutable
// state shared between them.
type Engine struct {
	cfg        config.Config // snapshot, immutable after New
	provider   search.Provider
	classifier analyze.Classifier
	queries    *query.Generator
	cache      *cache.Cache
	limiter    *ratelimit.Limiter
	filter     *filter.Filter
	analyzer   *analyze.Analyzer
	strict     bool
}

// New validates the configuration and builds an Engine. Configuration
// errors are fatal here so they can never surface at request time.
func New(cfg *config.Config, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	provider := opts.Provider
	if provider == nil {
		provider = search.NewNewsProvider()
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = analyze.NewLexicalClassifier()
	}

	resultCache, err := cache.Open(cache.Options{
		Enabled:    cfg.EnableCaching,
		TTL:        cfg.CacheTTL(),
		MaxEntries: cacheCap(cfg.CacheMaxEntries),
		Directory:  cfg.CacheDirectory,
	})
	if err != nil {
		return nil, fmt.Errorf("open result cache: %w", err)
	}

	return &Engine{
		cfg:        *cfg,
		provider:   provider,
		classifier: classifier,
		queries:    query.NewGenerator(cfg.RoleQueryTemplates),
		cache:      resultCache,
		limiter:    ratelimit.New(cfg.MaxSearchesPerMinute, cfg.MaxSearchesPerHour),
		filter:     filter.New(),
		analyzer:   analyze.New(classifier, cfg.MinConfidence),
		strict:     opts.Strict,
	}, nil
}

// cacheCap maps the configured entry limit to the cache's cap, where 0
// means unbounded. A configured 0 takes the default cap; a negative
// value requests an unbounded cache.
func cacheCap(configured int) int {
	switch {
	case configured < 0:
		return 0
	case configured == 0:
		return cache.DefaultMaxEntries
	default:
		return configured
	}
}

// Close tears down the engine, flushing any disk-backed cache.
func (e *Engine) Close() error {
	return e.cache.Close()
}

// GetZeitgeist assembles a full snapshot of current opinions and trends
// for the topic. Context text, if non-empty, biases every query.
func (e *Engine) GetZeitgeist(ctx context.Context, topic, contextText string) (*ZeitgeistResult, error) {
	queries := e.dedup(
		e.queries.Generate(topic, e.cfg.DefaultRole, contextText),
		e.queries.Generate(topic, "journalist", contextText),
		e.queries.Generate(topic, "", contextText),
	)

	results, err := e.collect(ctx, queries)
	if err != nil {
		return nil, err
	}

	analysis := e.analyzer.Analyze(ctx, results, topic)

	return &ZeitgeistResult{
		Topic:         query.NormalizeTopic(topic),
		Summary:       summarize(query.NormalizeTopic(topic), results, analysis),
		SearchResults: results,
		QueriesUsed:   queries,
		Timestamp:     time.Now(),
	}, nil
}

// GetRoleOpinions returns opinions gathered through the configured
// default role's query lens.
func (e *Engine) GetRoleOpinions(ctx context.Context, topic string) (*OpinionsResult, error) {
	role := query.NormalizeRole(e.cfg.DefaultRole)
	queries := []string{e.queries.Generate(topic, role, "")}

	results, err := e.collect(ctx, queries)
	if err != nil {
		return nil, err
	}

	analysis := e.analyzer.Analyze(ctx, results, topic)

	return &OpinionsResult{
		Topic:     query.NormalizeTopic(topic),
		Role:      role,
		Opinions:  analysis.Opinions,
		Timestamp: time.Now(),
	}, nil
}

// GetTrendingTools returns tools ranked by mention frequency across the
// developer-biased result set.
func (e *Engine) GetTrendingTools(ctx context.Context, topic string) (*ToolsResult, error) {
	queries := []string{e.queries.Generate(topic, "developer", "")}

	results, err := e.collect(ctx, queries)
	if err != nil {
		return nil, err
	}

	analysis := e.analyzer.Analyze(ctx, results, topic)

	return &ToolsResult{
		Topic:     query.NormalizeTopic(topic),
		Tools:     analysis.Tools,
		Timestamp: time.Now(),
	}, nil
}

// GetExpertPerspectives returns expert takes gathered through the
// expert- and academic-biased query lenses.
func (e *Engine) GetExpertPerspectives(ctx context.Context, topic string) (*PerspectivesResult, error) {
	queries := e.dedup(
		e.queries.Generate(topic, "expert", ""),
		e.queries.Generate(topic, "academic", ""),
	)

	results, err := e.collect(ctx, queries)
	if err != nil {
		return nil, err
	}

	analysis := e.analyzer.Analyze(ctx, results, topic)

	return &PerspectivesResult{
		Topic:        query.NormalizeTopic(topic),
		Perspectives: analysis.Perspectives,
		Timestamp:    time.Now(),
	}, nil
}

// collect runs the shared pipeline: cache lookups, rate-limited
// concurrent provider calls, merge, truncation, and content filtering.
//
// Failure policy (best-effort by default): a query that times out or
// errors drops only its own contribution; a query that cannot acquire a
// rate-limit slot is skipped. In strict mode rate exhaustion returns
// the *ratelimit.RateLimitError and total provider failure returns
// ErrProviderUnavailable.
func (e *Engine) collect(ctx context.Context, queries []string) ([]search.Result, error) {
	perQuery := make([][]search.Result, len(queries))

	// Cache pass
	var misses []int
	for i, q := range queries {
		if hit, ok := e.cache.Get(q); ok {
			perQuery[i] = hit
			logging.Debug("cache hit", "query", q, "results", len(hit))
			continue
		}
		misses = append(misses, i)
	}

	if len(misses) > 0 && !e.provider.Available() {
		if e.strict {
			return nil, ErrProviderUnavailable
		}
		logging.Warn("provider unavailable, serving cache only", "provider", e.provider.Name())
		misses = nil
	}

	// Rate-limit pass: acquire one slot per miss before fanning out, so
	// the fan-out never exceeds what the limiter allowed in one burst.
	// Slots stay consumed even if the fetch is later cancelled.
	var fetchable []int
	for _, i := range misses {
		if err := e.limiter.Acquire(); err != nil {
			if e.strict {
				return nil, err
			}
			logging.Warn("rate limit reached, skipping query", "query", queries[i], "err", err)
			continue
		}
		fetchable = append(fetchable, i)
	}

	// Concurrent provider calls, one per acquired slot.
	var mu sync.Mutex
	failures := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(fetchable) + 1)

	for _, i := range fetchable {
		i := i
		q := queries[i]
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(gctx, e.cfg.SearchTimeout())
			defer cancel()

			if e.cfg.LogSearches {
				logging.Info("search issued", "provider", e.provider.Name(), "query", q)
			}

			results, err := e.provider.Search(qctx, q, e.cfg.MaxSearchResults)
			if err != nil {
				// Partial degradation: this query contributes nothing.
				logging.Warn("search failed", "query", q, "err", err)
				mu.Lock()
				failures++
				mu.Unlock()
				return nil
			}

			e.cache.Put(q, results)
			mu.Lock()
			perQuery[i] = results
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge preserving intra-query order; cross-query order follows the
	// deterministic query order.
	var merged []search.Result
	gotAny := false
	for _, rs := range perQuery {
		if rs != nil {
			gotAny = true
		}
		merged = append(merged, rs...)
	}

	if !gotAny && len(fetchable) > 0 && failures == len(fetchable) {
		if e.strict {
			return nil, ErrProviderUnavailable
		}
		logging.Warn("all queries failed, returning empty result set")
	}

	// Truncation applies to the merged set, not per query.
	if len(merged) > e.cfg.MaxSearchResults {
		merged = merged[:e.cfg.MaxSearchResults]
	}

	return e.filter.Apply(merged, filter.Options{
		FilterAdult: e.cfg.FilterAdultContent,
		FilterSpam:  e.cfg.FilterSpam,
		MinScore:    e.cfg.MinConfidence,
	}), nil
}

// dedup drops repeated query strings, preserving first-seen order.
func (e *Engine) dedup(queries ...string) []string {
	seen := make(map[string]bool, len(queries))
	out := queries[:0]
	for _, q := range queries {
		if !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	return out
}

// summarize builds a structural one-line summary of the snapshot.
// Natural-language generation is out of scope; callers wanting prose
// feed the payload to their own completion layer.
func summarize(topic string, results []search.Result, analysis analyze.Analysis) string {
	if len(results) == 0 {
		return fmt.Sprintf("no results found for %q", topic)
	}

	var pos, neu, neg int
	for _, o := range analysis.Opinions {
		switch o.Sentiment {
		case analyze.SentimentPositive:
			pos++
		case analyze.SentimentNegative:
			neg++
		default:
			neu++
		}
	}

	return fmt.Sprintf("%d results for %q: %d opinions (%d positive, %d neutral, %d negative), %d trending tools, %d expert perspectives",
		len(results), topic, len(analysis.Opinions), pos, neu, neg, len(analysis.Tools), len(analysis.Perspectives))
}
