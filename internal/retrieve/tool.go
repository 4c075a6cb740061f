// Package retrieve wraps the external search collaborators as uniform
// retrieval tools the orchestrator can call turn by turn. Tools fail soft:
// provider errors degrade the result instead of propagating, so the loop can
// keep working with partial evidence.
package retrieve

import (
	"context"
	"errors"

	"github.com/avolkov/byline/internal/model"
)

// Tool turns a query into ranked evidence from one origin
type Tool interface {
	// Name returns the tool name used in the audit trail
	Name() string

	// Origin identifies which evidence origin the tool produces
	Origin() model.Origin

	// Retrieve runs one query. Provider failures are absorbed into a degraded
	// Result; the returned error is non-nil only for context cancellation.
	Retrieve(ctx context.Context, query string, topK int) (Result, error)
}

// Result is one tool invocation's outcome
type Result struct {
	Items    []model.EvidenceItem
	Degraded bool   // the provider errored; Items may be empty or partial
	Detail   string // provider failure description when degraded
}

// degrade absorbs a provider error unless the request itself was cancelled
func degrade(ctx context.Context, err error) (Result, error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, err
	}
	return Result{Degraded: true, Detail: err.Error()}, nil
}
