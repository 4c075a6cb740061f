package retrieve

import (
	"context"

	"github.com/avolkov/byline/internal/llm"
	"github.com/avolkov/byline/internal/model"
)

// Searcher answers nearest-neighbor queries against the archive index
type Searcher interface {
	Search(ctx context.Context, queryVector []float32, limit int) ([]model.EvidenceItem, error)
}

// ArchiveTool retrieves from the embedded archive: it embeds the query and
// runs a vector search, mapping hits to archive evidence
type ArchiveTool struct {
	embedder llm.Embedder
	searcher Searcher
}

// NewArchiveTool creates the archive retrieval tool
func NewArchiveTool(embedder llm.Embedder, searcher Searcher) *ArchiveTool {
	return &ArchiveTool{
		embedder: embedder,
		searcher: searcher,
	}
}

// Name returns the tool name used in the audit trail
func (t *ArchiveTool) Name() string {
	return "archive_retrieval"
}

// Origin identifies the evidence origin
func (t *ArchiveTool) Origin() model.Origin {
	return model.OriginArchive
}

// Retrieve embeds the query and searches the archive. Embedding and search
// failures degrade the result; they never fail the request on their own.
func (t *ArchiveTool) Retrieve(ctx context.Context, query string, topK int) (Result, error) {
	vector, err := t.embedder.Embed(ctx, query)
	if err != nil {
		return degrade(ctx, err)
	}

	items, err := t.searcher.Search(ctx, vector, topK)
	if err != nil {
		return degrade(ctx, err)
	}

	return Result{Items: items}, nil
}
