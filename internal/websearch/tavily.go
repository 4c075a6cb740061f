// Package websearch is the client for the live web search provider
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avolkov/byline/internal/model"
	"github.com/avolkov/byline/internal/util"
	"github.com/avolkov/byline/internal/worker"
)

// Client talks to the Tavily search API
type Client struct {
	apiKey     string
	baseURL    string
	depth      string
	httpClient *http.Client
	limiter    *worker.Limiter
	maxRetries int
	retryBase  time.Duration
}

// Options configures the Tavily client
type Options struct {
	APIKey     string
	BaseURL    string
	Depth      string // "basic" or "advanced"
	Timeout    time.Duration
	Limiter    *worker.Limiter
	MaxRetries int
	RetryBase  time.Duration
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// NewClient creates a Tavily search client
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("web search API key is required")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}

	depth := opts.Depth
	if depth == "" {
		depth = "advanced"
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		depth:   depth,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy),
			},
		},
		limiter:    opts.Limiter,
		maxRetries: opts.MaxRetries,
		retryBase:  opts.RetryBase,
	}, nil
}

// Tavily API structures
type searchRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type searchResponse struct {
	Answer  string         `json:"answer,omitempty"`
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date,omitempty"`
}

// Search issues a web query and maps results to web evidence. Tavily scores
// already live in [0,1] and need no rescaling before the quality gate.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]model.EvidenceItem, error) {
	endpoint := c.baseURL + "/search"

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(searchRequest{
		APIKey:            c.apiKey,
		Query:             query,
		MaxResults:        maxResults,
		SearchDepth:       c.depth,
		IncludeRawContent: false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	var resp searchResponse
	err = worker.Retry(ctx, c.maxRetries, c.retryBase, func(ctx context.Context) error {
		return c.doSearch(ctx, endpoint, body, &resp)
	})
	if err != nil {
		return nil, err
	}

	items := make([]model.EvidenceItem, 0, len(resp.Results))
	for _, result := range resp.Results {
		items = append(items, model.NewEvidenceItem(
			model.OriginWeb,
			result.Title,
			publisherFromURL(result.URL),
			result.URL,
			result.Content,
			parseDate(result.PublishedDate),
			result.Score,
		))
	}

	return items, nil
}

func (c *Client) doSearch(ctx context.Context, endpoint string, body []byte, out *searchResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return worker.Transient(fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return worker.Transient(fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return worker.Transient(fmt.Errorf("web search error (%d): %s", resp.StatusCode, string(respBody)))
	default:
		return fmt.Errorf("web search error (%d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// publisherFromURL derives a publisher name from the result domain
func publisherFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "web"
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

// parseDate accepts the date formats Tavily returns
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "Mon, 02 Jan 2006 15:04:05 MST"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
