package agent

import (
	"errors"
	"fmt"

	"github.com/avolkov/byline/internal/model"
)

// Error is a terminal request failure. It carries the classified reason and
// the complete turn trail up to the failure, so callers can inspect what the
// loop did before giving up.
type Error struct {
	Reason model.FailReason
	Detail string
	Trail  []model.AgentTurn
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// ReasonOf extracts the failure reason from any error returned by the
// orchestrator
func ReasonOf(err error) (model.FailReason, bool) {
	var agentErr *Error
	if errors.As(err, &agentErr) {
		return agentErr.Reason, true
	}
	return "", false
}

// TrailOf extracts the turn trail from a terminal failure
func TrailOf(err error) []model.AgentTurn {
	var agentErr *Error
	if errors.As(err, &agentErr) {
		return agentErr.Trail
	}
	return nil
}
