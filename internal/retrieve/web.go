package retrieve

import (
	"context"

	"github.com/avolkov/byline/internal/model"
)

// thinSnippetRunes is the excerpt length below which a web result is worth
// expanding from the page itself
const thinSnippetRunes = 160

// WebSearcher answers free-text queries with ranked web results
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]model.EvidenceItem, error)
}

// PageExpander fetches a result page's visible text for excerpt expansion
type PageExpander interface {
	PageText(ctx context.Context, rawURL string) (string, error)
}

// WebTool retrieves live web results. With an expander configured it
// upgrades thin snippets to real page text before the excerpt bound applies.
type WebTool struct {
	searcher WebSearcher
	expander PageExpander // optional
}

// NewWebTool creates the web retrieval tool
func NewWebTool(searcher WebSearcher, expander PageExpander) *WebTool {
	return &WebTool{
		searcher: searcher,
		expander: expander,
	}
}

// Name returns the tool name used in the audit trail
func (t *WebTool) Name() string {
	return "web_search"
}

// Origin identifies the evidence origin
func (t *WebTool) Origin() model.Origin {
	return model.OriginWeb
}

// Retrieve issues the query to the web search provider. Provider failures
// degrade the result; expansion failures keep the original snippet.
func (t *WebTool) Retrieve(ctx context.Context, query string, topK int) (Result, error) {
	items, err := t.searcher.Search(ctx, query, topK)
	if err != nil {
		return degrade(ctx, err)
	}

	if t.expander != nil {
		items = t.expandThin(ctx, items)
	}

	return Result{Items: items}, nil
}

func (t *WebTool) expandThin(ctx context.Context, items []model.EvidenceItem) []model.EvidenceItem {
	expanded := make([]model.EvidenceItem, 0, len(items))
	for _, item := range items {
		if len([]rune(item.Excerpt)) >= thinSnippetRunes {
			expanded = append(expanded, item)
			continue
		}

		text, err := t.expander.PageText(ctx, item.Locator)
		if err != nil || text == "" {
			expanded = append(expanded, item)
			continue
		}

		// Rebuild so the excerpt bound and stable ID still hold.
		expanded = append(expanded, model.NewEvidenceItem(
			item.Origin, item.Title, item.Publisher, item.Locator,
			text, item.PublishedAt, item.RelevanceScore,
		))
	}
	return expanded
}
