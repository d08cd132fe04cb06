package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	ometrics "github.com/arbor-research/arbor/internal/metrics"
	"github.com/arbor-research/arbor/internal/tracing"
)

// Config holds web-search service connection settings.
type Config struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Result is one search hit with its content fetched inline.
type Result struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Client is a web-search-with-content client. Every search requests full
// text inline and opts into best-effort live content rather than cached-only.
// An optional cache sits in front of the API; a per-provider rate limiter
// paces outbound calls.
type Client struct {
	cfg     Config
	http    *http.Client
	cache   Cache
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewClient builds a client with defaults applied. Cache may be nil.
func NewClient(cfg Config, cache Cache, logger *zap.Logger) *Client {
	c := cfg
	if c.BaseURL == "" {
		c.BaseURL = "https://api.exa.ai"
	}
	if c.Provider == "" {
		c.Provider = "exa"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:     c,
		http:    &http.Client{Timeout: c.Timeout},
		cache:   cache,
		limiter: LimiterForProvider(c.Provider),
		log:     logger,
	}
}

type searchRequest struct {
	Query      string         `json:"query"`
	NumResults int            `json:"numResults"`
	Contents   searchContents `json:"contents"`
}

type searchContents struct {
	Text      bool   `json:"text"`
	Livecrawl string `json:"livecrawl"`
}

type searchResponse struct {
	Results []struct {
		Title string  `json:"title"`
		URL   string  `json:"url"`
		Text  string  `json:"text"`
		Score float64 `json:"score"`
	} `json:"results"`
}

// Search fetches up to count content-bearing results for query, in provider
// order.
func (c *Client) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if count <= 0 {
		return nil, nil
	}

	key := cacheKey(query, count)
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, key); ok {
			ometrics.SearchCacheHits.Inc()
			return cached, nil
		}
		ometrics.SearchCacheMisses.Inc()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	url := c.cfg.BaseURL + "/search"

	ctx, span := tracing.StartHTTPSpan(ctx, http.MethodPost, url)
	defer span.End()

	payload := searchRequest{
		Query:      query,
		NumResults: count,
		Contents: searchContents{
			Text:      true,
			Livecrawl: "preferred",
		},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}
	tracing.InjectTraceparent(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		ometrics.RecordSearchMetrics(c.cfg.Provider, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ometrics.RecordSearchMetrics(c.cfg.Provider, "error", time.Since(start).Seconds())
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("search service returned %d: %s", resp.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		ometrics.RecordSearchMetrics(c.cfg.Provider, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]Result, 0, len(sr.Results))
	for _, r := range sr.Results {
		results = append(results, Result{
			Title: r.Title,
			URL:   r.URL,
			Text:  r.Text,
			Score: r.Score,
		})
	}

	ometrics.RecordSearchMetrics(c.cfg.Provider, "ok", time.Since(start).Seconds())
	c.log.Debug("Search completed",
		zap.String("query", query),
		zap.Int("requested", count),
		zap.Int("returned", len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if c.cache != nil {
		c.cache.Set(ctx, key, results, c.cfg.CacheTTL)
	}
	return results, nil
}
