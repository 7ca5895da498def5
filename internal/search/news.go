package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"
)

const defaultNewsEndpoint = "https://news.google.com/rss/search"

// rankDecay is how much RawScore drops per result position.
const rankDecay = 0.03

// NewsProvider searches the Google News RSS endpoint. Results arrive as
// a feed ordered by relevance; rank order is converted into RawScore.
type NewsProvider struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewNewsProvider creates a provider backed by Google News RSS search.
// The pacing limiter keeps request bursts polite regardless of how many
// queries the engine fans out.
func NewNewsProvider() *NewsProvider {
	return &NewsProvider{
		endpoint: defaultNewsEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
	}
}

// Name returns the provider identifier for logging.
func (p *NewsProvider) Name() string {
	return "news-rss"
}

// Available returns true; the endpoint needs no credentials.
func (p *NewsProvider) Available() bool {
	return true
}

// Search fetches and parses the RSS search feed for the query.
func (p *NewsProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("pacing limiter: %w", err)
	}

	u := fmt.Sprintf("%s?q=%s&hl=en-US&gl=US&ceid=US:en", p.endpoint, url.QueryEscape(query))

	body, err := p.fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	parser := gofeed.NewParser()
	feed, err := parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	now := time.Now()
	results := make([]Result, 0, limit)
	for i, item := range feed.Items {
		if limit > 0 && len(results) >= limit {
			break
		}
		results = append(results, convertItem(item, i, now))
	}
	return results, nil
}

// fetch performs the HTTP request, retrying once on 429 or 5xx.
func (p *NewsProvider) fetch(ctx context.Context, u string) (io.ReadCloser, error) {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if reqErr != nil {
			return nil, fmt.Errorf("failed to create request: %w", reqErr)
		}
		req.Header.Set("User-Agent", "Zeitgeist/0.1 (https://github.com/abelbrown/zeitgeist)")

		resp, doErr := p.client.Do(req)
		if doErr != nil {
			return nil, fmt.Errorf("failed to fetch results: %w", doErr)
		}

		if resp.StatusCode == http.StatusOK {
			return resp.Body, nil
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			err = fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
			delay := time.Second
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if seconds, parseErr := strconv.Atoi(ra); parseErr == nil && seconds >= 0 && seconds <= 30 {
					delay = time.Duration(seconds) * time.Second
				}
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}
	return nil, err
}

// convertItem converts a gofeed.Item into a Result. Rank position maps
// to a decaying RawScore so downstream thresholds have something to
// compare against.
func convertItem(item *gofeed.Item, rank int, retrieved time.Time) Result {
	text := strings.TrimSpace(item.Title)
	if desc := sanitizeSnippet(item.Description); desc != "" && desc != text {
		text += " " + desc
	}

	score := 1.0 - rankDecay*float64(rank)
	if score < 0.1 {
		score = 0.1
	}

	return Result{
		ID:          hashString(item.Link + item.Title),
		Text:        text,
		Source:      sourceHost(item.Link),
		URL:         item.Link,
		RetrievedAt: retrieved,
		RawScore:    score,
	}
}

// htmlTagRe matches HTML tags.
var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// whitespaceRe matches runs of whitespace.
var whitespaceRe = regexp.MustCompile(`\s+`)

// sanitizeSnippet strips HTML tags and collapses whitespace.
func sanitizeSnippet(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// sourceHost extracts the host from a link, stripping a www. prefix.
func sourceHost(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// hashString creates a short hash of a string for use as an ID.
func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:8]) // 16 character hex string
}
