// Package fetch expands thin web-search snippets by retrieving the result
// page itself. Fetches are polite: robots.txt is honored, hosts are rate
// limited and bodies are size-capped.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avolkov/byline/internal/util"
	"github.com/avolkov/byline/internal/worker"
	"golang.org/x/net/html"
)

// Fetcher retrieves pages and extracts their visible text
type Fetcher struct {
	httpClient *http.Client
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	userAgent  string
	maxBytes   int64
}

// Options configures the fetcher
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	MaxBytes   int64
	Limiter    *worker.Limiter
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// NewFetcher creates a new Fetcher
func NewFetcher(opts Options) *Fetcher {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	maxBytes := opts.MaxBytes
	if maxBytes == 0 {
		maxBytes = 2_000_000
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:    util.NewRobotsChecker(opts.UserAgent, timeout),
		limiter:   opts.Limiter,
		userAgent: opts.UserAgent,
		maxBytes:  maxBytes,
	}
}

// PageText fetches the page at rawURL and returns its visible text. A
// robots.txt disallow returns an empty string without error so callers keep
// the original snippet.
func (f *Fetcher) PageText(ctx context.Context, rawURL string) (string, error) {
	allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("robots check: %w", err)
	}
	if !allowed {
		return "", nil
	}

	if f.limiter != nil {
		if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	return VisibleText(doc), nil
}

// VisibleText extracts text nodes from parsed HTML, skipping scripts, styles
// and navigation chrome
func VisibleText(n *html.Node) string {
	var b strings.Builder
	collectText(n, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "nav", "header", "footer":
			return
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
