// Package vector is the search-only client for the vector store holding the
// embedded archive. The index itself is a black box: ingestion owns writes,
// this client only asks nearest-neighbor questions.
package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avolkov/byline/internal/model"
	"github.com/avolkov/byline/internal/util"
	"github.com/avolkov/byline/internal/worker"
)

// Client talks to a Qdrant instance over its HTTP API
type Client struct {
	baseURL    string
	apiKey     string
	collection string
	httpClient *http.Client
	limiter    *worker.Limiter
	maxRetries int
	retryBase  time.Duration
}

// Options configures the Qdrant client
type Options struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
	Limiter    *worker.Limiter
	MaxRetries int
	RetryBase  time.Duration
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// NewClient creates a Qdrant search client
func NewClient(opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("vector store URL is required")
	}
	if opts.Collection == "" {
		return nil, fmt.Errorf("vector store collection is required")
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimSuffix(opts.URL, "/"),
		apiKey:     opts.APIKey,
		collection: opts.Collection,
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

// Qdrant API structures
type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []searchHit `json:"result"`
	Status string      `json:"status"`
}

type searchHit struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload hitPayload      `json:"payload"`
}

// hitPayload mirrors the metadata the ingestion collaborator stores with
// every archive chunk
type hitPayload struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	Date      string `json:"date"`
	URL       string `json:"url"`
	Text      string `json:"text"`
}

// Search runs a nearest-neighbor query and maps hits to archive evidence.
// Qdrant cosine scores already live in [0,1], so they pass through clamping
// unchanged.
func (c *Client) Search(ctx context.Context, queryVector []float32, limit int) ([]model.EvidenceItem, error) {
	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, url); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(searchRequest{
		Vector:      queryVector,
		Limit:       limit,
		WithPayload: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	var resp searchResponse
	err = worker.Retry(ctx, c.maxRetries, c.retryBase, func(ctx context.Context) error {
		return c.doSearch(ctx, url, body, &resp)
	})
	if err != nil {
		return nil, err
	}

	items := make([]model.EvidenceItem, 0, len(resp.Result))
	for _, hit := range resp.Result {
		locator := hit.Payload.URL
		if locator == "" {
			// Point IDs are raw JSON; string IDs keep their quotes otherwise.
			id := strings.Trim(string(hit.ID), `"`)
			locator = fmt.Sprintf("archive://%s/%s", c.collection, id)
		}
		items = append(items, model.NewEvidenceItem(
			model.OriginArchive,
			hit.Payload.Title,
			hit.Payload.Publisher,
			locator,
			hit.Payload.Text,
			parseDate(hit.Payload.Date),
			hit.Score,
		))
	}

	return items, nil
}

func (c *Client) doSearch(ctx context.Context, url string, body []byte, out *searchResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

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
		return worker.Transient(fmt.Errorf("vector store error (%d): %s", resp.StatusCode, string(respBody)))
	default:
		return fmt.Errorf("vector store error (%d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// parseDate accepts the date formats the ingestion pipeline writes
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
