package model

import "time"

// State is a phase of the reasoning loop
type State string

const (
	StateGathering    State = "GATHERING"
	StateSufficient   State = "SUFFICIENT"
	StateSynthesizing State = "SYNTHESIZING"
	StateValidating   State = "VALIDATING"
	StateDone         State = "DONE"
	StateFailed       State = "FAILED"
)

// ActionKind names what the orchestrator decided to do in a turn
type ActionKind string

const (
	ActionRetrieveArchive ActionKind = "retrieve_archive"
	ActionRetrieveWeb     ActionKind = "retrieve_web"
	ActionReformulate     ActionKind = "reformulate"
	ActionSynthesize      ActionKind = "synthesize"
	ActionValidate        ActionKind = "validate"
	ActionAbort           ActionKind = "abort"
	ActionAdvance         ActionKind = "advance" // state transition with no tool call
)

// Action is the tool invocation (or terminal decision) taken in a turn
type Action struct {
	Kind  ActionKind `json:"kind"`
	Query string     `json:"query,omitempty"`
}

// AgentTurn is one iteration of the reasoning loop. The ordered sequence of
// turns forms the audit trail returned to the caller; it is complete even on
// the FAILED path.
type AgentTurn struct {
	Seq         int       `json:"seq"`
	State       State     `json:"state"`
	Thought     string    `json:"thought"`
	Action      Action    `json:"action"`
	Observation string    `json:"observation"`
	Degraded    bool      `json:"degraded,omitempty"` // a provider errored and was absorbed
	At          time.Time `json:"at"`
}

// FailReason classifies terminal failures of a request
type FailReason string

const (
	ReasonToolUnavailable      FailReason = "TOOL_UNAVAILABLE"
	ReasonInsufficientEvidence FailReason = "INSUFFICIENT_EVIDENCE"
	ReasonSynthesisTimeout     FailReason = "SYNTHESIS_TIMEOUT"
	ReasonSynthesisError       FailReason = "SYNTHESIS_ERROR"
	ReasonCitationInvalid      FailReason = "CITATION_INVALID"
	ReasonCancelled            FailReason = "CANCELLED"
)
