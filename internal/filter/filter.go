// Package filter removes low-quality, adult, and spam-flagged results
// before analysis.
package filter

import (
	"regexp"
	"strings"

	"github.com/abelbrown/zeitgeist/internal/search"
)

// Options control which checks are applied.
type Options struct {
	FilterAdult bool
	FilterSpam  bool
	MinScore    float64 // applied when a result carries a score
}

// Filter flags results by source/text heuristics. The heuristics are
// intentionally simple; the contract is that flagged items are removed
// deterministically for the same input, in input order.
type Filter struct {
	adultKeywords []string
	spamKeywords  []string

	adultURLPatterns []*regexp.Regexp
	spamURLPatterns  []*regexp.Regexp
}

// New returns a filter with the default blocklists.
func New() *Filter {
	f := &Filter{
		adultKeywords: []string{
			"porn",
			"xxx",
			"nsfw",
			"explicit content",
			"adults only",
			"18+",
			"onlyfans",
			"escort service",
		},
		spamKeywords: []string{
			// Promotions
			"sponsored",
			"advertisement",
			"paid content",
			"paid post",
			"partner content",
			"branded content",
			"promoted",
			"presented by",
			"brought to you by",
			// Bait
			"you won't believe",
			"miracle cure",
			"weight loss trick",
			"get rich quick",
			"work from home and earn",
			"limited time offer",
			"click here",
			"buy now",
			"act now",
			"100% free",
			"crypto giveaway",
		},
	}

	f.adultURLPatterns = compilePatterns([]string{
		`(?i)/adult/`,
		`(?i)/nsfw/`,
		`(?i)\bxxx\b`,
		`(?i)porn`,
	})

	f.spamURLPatterns = compilePatterns([]string{
		`/sponsored/`,
		`/native/`,
		`/branded-content/`,
		`/partner/`,
		`/advertisement/`,
		`/paid-post/`,
		`/promo/`,
		`doubleclick\.net`,
		`googlesyndication\.com`,
		`utm_source=paid`,
	})

	return f
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	result := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if re, err := regexp.Compile(p); err == nil {
			result = append(result, re)
		}
	}
	return result
}

// IsAdult returns true if the result trips the adult-content heuristics.
func (f *Filter) IsAdult(r search.Result) bool {
	for _, re := range f.adultURLPatterns {
		if re.MatchString(r.URL) || re.MatchString(r.Source) {
			return true
		}
	}
	text := strings.ToLower(r.Text)
	for _, kw := range f.adultKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// IsSpam returns true if the result trips the spam heuristics.
func (f *Filter) IsSpam(r search.Result) bool {
	for _, re := range f.spamURLPatterns {
		if re.MatchString(r.URL) || re.MatchString(r.Source) {
			return true
		}
	}
	text := strings.ToLower(r.Text)
	for _, kw := range f.spamKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// shouldBlock applies the enabled checks to a single result.
func (f *Filter) shouldBlock(r search.Result, opts Options) bool {
	// Empty snippets carry nothing to analyze.
	if strings.TrimSpace(r.Text) == "" {
		return true
	}
	if opts.FilterAdult && f.IsAdult(r) {
		return true
	}
	if opts.FilterSpam && f.IsSpam(r) {
		return true
	}
	// Zero means the provider reported no score and passes the floor.
	// Anything else, negative scores included, must clear it.
	if r.RawScore != 0 && r.RawScore < opts.MinScore {
		return true
	}
	return false
}

// Apply returns the surviving results in their original order.
func (f *Filter) Apply(results []search.Result, opts Options) []search.Result {
	kept := make([]search.Result, 0, len(results))
	for _, r := range results {
		if !f.shouldBlock(r, opts) {
			kept = append(kept, r)
		}
	}
	return kept
}

// BlockedCount returns how many results would be removed.
func (f *Filter) BlockedCount(results []search.Result, opts Options) int {
	count := 0
	for _, r := range results {
		if f.shouldBlock(r, opts) {
			count++
		}
	}
	return count
}
