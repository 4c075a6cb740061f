// Package agent implements the reasoning orchestrator: an explicit state
// machine that gathers evidence through retrieval tools, gates it for
// sufficiency, invokes synthesis once and validates citation integrity.
// All policy lives in the explicit Config; the loop itself is deterministic
// for a given strategy and tool behavior.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avolkov/byline/internal/cite"
	"github.com/avolkov/byline/internal/llm"
	"github.com/avolkov/byline/internal/model"
	"github.com/avolkov/byline/internal/rank"
	"github.com/avolkov/byline/internal/retrieve"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Orchestrator runs outline and draft requests end to end. It owns no
// per-request state: every request gets its own run, so any number of
// requests may execute concurrently over the same instance.
type Orchestrator struct {
	archive  retrieve.Tool
	web      retrieve.Tool // nil when web retrieval is not configured
	synth    llm.Synthesizer
	strategy Strategy
	cfg      model.Config
	logger   *zap.Logger
}

// New creates an orchestrator over the given tools and synthesis client.
// web may be nil for archive-only deployments.
func New(archive retrieve.Tool, web retrieve.Tool, synth llm.Synthesizer, cfg model.Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		archive:  archive,
		web:      web,
		synth:    synth,
		strategy: HeuristicStrategy{},
		cfg:      cfg,
		logger:   logger,
	}
}

// SetStrategy swaps the gathering strategy; the default is HeuristicStrategy
func (o *Orchestrator) SetStrategy(s Strategy) {
	if s != nil {
		o.strategy = s
	}
}

// GenerateOutline researches the task and synthesizes an article outline.
// On terminal failure the returned error is an *Error carrying the reason
// and the complete turn trail.
func (o *Orchestrator) GenerateOutline(ctx context.Context, task model.OutlineTask) (*model.OutlineResult, error) {
	if task.Headline == "" {
		return nil, fmt.Errorf("headline is required")
	}
	if task.Thesis == "" {
		return nil, fmt.Errorf("thesis is required")
	}

	r := o.newRun("outline")
	r.log.Info("outline request accepted",
		zap.String("headline", task.Headline),
		zap.Bool("allow_web", task.AllowWeb))

	qc := QueryContext{
		Headline: task.Headline,
		Thesis:   task.Thesis,
		KeyFacts: task.KeyFacts,
		AllowWeb: task.AllowWeb && o.web != nil,
	}

	sources, ferr := r.gather(ctx, qc)
	if ferr != nil {
		return nil, ferr
	}

	prompt := llm.BuildOutlinePrompt(task, sources)
	text, ferr := r.synthesize(ctx, llm.OutlineSystem, prompt)
	if ferr != nil {
		return nil, ferr
	}

	text, _, warning, ferr := r.validateAndFix(ctx, text, sources, llm.OutlineSystem, prompt)
	if ferr != nil {
		return nil, ferr
	}

	r.transition(model.StateDone, fmt.Sprintf("outline complete with %d sources", len(sources)))

	return &model.OutlineResult{
		Headline: task.Headline,
		Thesis:   task.Thesis,
		Text:     text,
		Sources:  sources,
		Trail:    r.trail,
		Warning:  joinWarnings(warning, r.degradedWarning()),
	}, nil
}

// GenerateDraft turns an approved outline into a full article draft. Sources
// carried over from the outline step are used as-is; with none provided the
// orchestrator gathers fresh evidence first.
func (o *Orchestrator) GenerateDraft(ctx context.Context, task model.DraftTask) (*model.DraftResult, error) {
	if task.Headline == "" {
		return nil, fmt.Errorf("headline is required")
	}
	if task.Thesis == "" {
		return nil, fmt.Errorf("thesis is required")
	}
	if task.Outline == "" {
		return nil, fmt.Errorf("outline is required")
	}
	task.TargetWordCount = o.clampWordCount(task.TargetWordCount)

	r := o.newRun("draft")
	r.log.Info("draft request accepted",
		zap.String("headline", task.Headline),
		zap.Int("target_words", task.TargetWordCount),
		zap.Int("provided_sources", len(task.Sources)))

	sources := task.Sources
	if len(sources) == 0 {
		qc := QueryContext{
			Headline: task.Headline,
			Thesis:   task.Thesis,
			AllowWeb: task.AllowWeb && o.web != nil,
		}
		var ferr *Error
		sources, ferr = r.gather(ctx, qc)
		if ferr != nil {
			return nil, ferr
		}
	} else {
		r.record(model.StateGathering, "sources carried over from the outline step",
			model.Action{Kind: model.ActionAdvance}, fmt.Sprintf("%d ranked sources provided", len(sources)), false)
		r.transition(model.StateSufficient, "provided sources accepted without gathering")
	}

	prompt := llm.BuildDraftPrompt(task, sources)
	text, ferr := r.synthesize(ctx, llm.DraftSystem, prompt)
	if ferr != nil {
		return nil, ferr
	}

	text = cite.CleanResponse(text, task.Headline)

	text, validation, warning, ferr := r.validateAndFix(ctx, text, sources, llm.DraftSystem, prompt)
	if ferr != nil {
		return nil, ferr
	}

	used, unused := cite.SplitUsage(text, sources)
	expanded := cite.ExpandMarkers(text, sources)
	wordCount := cite.WordCount(expanded)
	styleScore := cite.StyleScore(expanded)

	warning = joinWarnings(warning,
		o.wordCountWarning(wordCount, task.TargetWordCount),
		o.usageWarning(validation, styleScore),
		r.degradedWarning())

	r.transition(model.StateDone, fmt.Sprintf("draft complete: %d words, %d sources cited", wordCount, len(used)))

	return &model.DraftResult{
		Headline:      task.Headline,
		Text:          expanded,
		WordCount:     wordCount,
		Sections:      cite.Sections(expanded),
		SourcesUsed:   used,
		SourcesUnused: unused,
		Validation:    validation,
		StyleScore:    styleScore,
		Trail:         r.trail,
		Warning:       warning,
	}, nil
}

func (o *Orchestrator) clampWordCount(target int) int {
	if target < o.cfg.Validation.MinWordCount {
		return o.cfg.Validation.MinWordCount
	}
	if target > o.cfg.Validation.MaxWordCount {
		return o.cfg.Validation.MaxWordCount
	}
	return target
}

func (o *Orchestrator) wordCountWarning(got, target int) string {
	switch {
	case got < o.cfg.Validation.MinWordCount:
		return fmt.Sprintf("word count below minimum: %d words (target %d)", got, target)
	case got > o.cfg.Validation.MaxWordCount:
		return fmt.Sprintf("word count above maximum: %d words (target %d)", got, target)
	case abs(got-target) > 200:
		return fmt.Sprintf("word count far from target: %d words (target %d)", got, target)
	}
	return ""
}

func (o *Orchestrator) usageWarning(v model.ValidationResult, styleScore float64) string {
	var warnings []string
	if v.CitationCount == 0 {
		warnings = append(warnings, "no citations found in draft")
	} else if v.UniqueSources < o.cfg.Validation.MinUniqueCited {
		warnings = append(warnings, fmt.Sprintf("low source diversity: only %d unique sources cited", v.UniqueSources))
	}
	if styleScore < o.cfg.Validation.MinStyleScore {
		warnings = append(warnings, fmt.Sprintf("style score %.2f below %.2f", styleScore, o.cfg.Validation.MinStyleScore))
	}
	return strings.Join(warnings, "; ")
}

// run is the per-request state: the current phase, the audit trail and the
// gathering bookkeeping. Never shared across requests.
type run struct {
	o     *Orchestrator
	id    string
	state model.State
	trail []model.AgentTurn
	log   *zap.Logger

	results       [][]model.EvidenceItem
	queried       []model.Origin
	queries       map[model.Origin][]string
	yield         map[model.Origin]int
	reformulated  map[model.Origin]bool
	degradedLast  map[model.Origin]bool
	gatherTurns   int
	toolCalls     int
	degradedCalls int
}

func (o *Orchestrator) newRun(kind string) *run {
	id := uuid.NewString()
	return &run{
		o:            o,
		id:           id,
		state:        model.StateGathering,
		log:          o.logger.With(zap.String("request_id", id), zap.String("kind", kind)),
		queries:      make(map[model.Origin][]string),
		yield:        make(map[model.Origin]int),
		reformulated: make(map[model.Origin]bool),
		degradedLast: make(map[model.Origin]bool),
	}
}

// record appends one turn to the audit trail and mirrors it to the log
func (r *run) record(state model.State, thought string, action model.Action, observation string, degraded bool) {
	turn := model.AgentTurn{
		Seq:         len(r.trail) + 1,
		State:       state,
		Thought:     thought,
		Action:      action,
		Observation: observation,
		Degraded:    degraded,
		At:          time.Now().UTC(),
	}
	r.trail = append(r.trail, turn)

	r.log.Info("turn",
		zap.Int("seq", turn.Seq),
		zap.String("state", string(state)),
		zap.String("action", string(action.Kind)),
		zap.String("observation", observation),
		zap.Bool("degraded", degraded))
}

// transition moves the run to a new state and records it on the trail
func (r *run) transition(to model.State, note string) {
	from := r.state
	r.state = to
	r.record(to, fmt.Sprintf("transition %s -> %s", from, to), model.Action{Kind: actionForState(to)}, note, false)
}

// fail moves the run to FAILED and returns the terminal error with the
// complete trail attached
func (r *run) fail(reason model.FailReason, detail string) *Error {
	r.state = model.StateFailed
	r.record(model.StateFailed, "terminating request", model.Action{Kind: model.ActionAbort}, fmt.Sprintf("%s: %s", reason, detail), false)
	r.log.Warn("request failed", zap.String("reason", string(reason)), zap.String("detail", detail))
	return &Error{Reason: reason, Detail: detail, Trail: r.trail}
}

// gather runs the GATHERING loop until the quality gate reports sufficiency,
// the turn budget runs out, or every tool is exhausted
func (r *run) gather(ctx context.Context, task QueryContext) (model.RankedSourceList, *Error) {
	cfg := r.o.cfg.Retrieval

	for {
		if ctx.Err() != nil {
			return nil, r.fail(model.ReasonCancelled, ctx.Err().Error())
		}

		ranked, sufficient := rank.Merge(r.results, cfg.MinScore, cfg.MinSources, r.queried)
		if sufficient {
			r.transition(model.StateSufficient, fmt.Sprintf("quality gate passed with %d sources", len(ranked)))
			return ranked, nil
		}

		if r.gatherTurns >= cfg.MaxTurns {
			return nil, r.fail(model.ReasonInsufficientEvidence,
				fmt.Sprintf("turn budget of %d exhausted with %d sources (need %d)", cfg.MaxTurns, len(ranked), cfg.MinSources))
		}

		decision, ok := r.o.strategy.Next(task, r.snapshot())
		if !ok {
			if r.toolCalls > 0 && r.degradedCalls == r.toolCalls {
				return nil, r.fail(model.ReasonToolUnavailable, "every retrieval call failed")
			}
			return nil, r.fail(model.ReasonInsufficientEvidence,
				fmt.Sprintf("retrieval options exhausted with %d sources (need %d)", len(ranked), cfg.MinSources))
		}

		if ferr := r.executeDecision(ctx, decision); ferr != nil {
			return nil, ferr
		}
	}
}

func (r *run) executeDecision(ctx context.Context, decision Decision) *Error {
	cfg := r.o.cfg.Retrieval

	tool := r.o.archive
	topK := cfg.ArchiveTopK
	if decision.Origin == model.OriginWeb {
		tool = r.o.web
		topK = cfg.WebTopK
	}

	r.gatherTurns++
	r.toolCalls++
	if !containsOrigin(r.queried, decision.Origin) {
		r.queried = append(r.queried, decision.Origin)
	}
	r.queries[decision.Origin] = append(r.queries[decision.Origin], decision.Query)
	if decision.Reformulate {
		r.reformulated[decision.Origin] = true
	}

	result, err := tool.Retrieve(ctx, decision.Query, topK)
	if err != nil {
		// Tools only propagate cancellation; everything else degrades.
		r.record(model.StateGathering, decision.Thought, actionFor(decision), "retrieval aborted: "+err.Error(), false)
		return r.fail(model.ReasonCancelled, err.Error())
	}

	above := rank.CountAbove(result.Items, cfg.MinScore)
	r.yield[decision.Origin] += above
	r.degradedLast[decision.Origin] = result.Degraded
	if result.Degraded {
		r.degradedCalls++
	}

	observation := fmt.Sprintf("%s returned %d items, %d above %.2f", tool.Name(), len(result.Items), above, cfg.MinScore)
	if result.Degraded {
		observation = fmt.Sprintf("%s degraded: %s", tool.Name(), result.Detail)
	}
	r.record(model.StateGathering, decision.Thought, actionFor(decision), observation, result.Degraded)

	r.results = append(r.results, result.Items)
	return nil
}

func (r *run) snapshot() Snapshot {
	return Snapshot{
		Turn:         r.gatherTurns + 1,
		Queries:      r.queries,
		Yield:        r.yield,
		Reformulated: r.reformulated,
		Degraded:     r.degradedLast,
	}
}

// synthesize invokes the synthesis client exactly once under its timeout
func (r *run) synthesize(ctx context.Context, system, prompt string) (string, *Error) {
	r.transition(model.StateSynthesizing, fmt.Sprintf("invoking %s", r.o.synth.Name()))

	synthCtx, cancel := context.WithTimeout(ctx, r.o.cfg.Synthesis.Timeout)
	defer cancel()

	resp, err := r.o.synth.Synthesize(synthCtx, llm.SynthesisRequest{
		System:      system,
		Prompt:      prompt,
		Temperature: r.o.cfg.Synthesis.Temperature,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", r.fail(model.ReasonCancelled, ctx.Err().Error())
		}
		if synthCtx.Err() == context.DeadlineExceeded {
			return "", r.fail(model.ReasonSynthesisTimeout,
				fmt.Sprintf("synthesis exceeded %v", r.o.cfg.Synthesis.Timeout))
		}
		return "", r.fail(model.ReasonSynthesisError, err.Error())
	}

	r.record(model.StateSynthesizing, "synthesis returned",
		model.Action{Kind: model.ActionSynthesize},
		fmt.Sprintf("%s produced %d tokens", resp.Model, resp.TokensUsed), false)

	return resp.Text, nil
}

// validateAndFix runs the citation integrity check and, when invalid
// citations are found, re-invokes synthesis once with corrective
// instructions. Remaining findings surface as a warning, never as a hard
// failure: citation gaps are a trust signal for the human reviewer.
func (r *run) validateAndFix(ctx context.Context, text string, sources model.RankedSourceList, system, prompt string) (string, model.ValidationResult, string, *Error) {
	tolerance := r.o.cfg.Validation.Tolerance

	r.transition(model.StateValidating, "checking citation integrity")
	validation := cite.Validate(text, sources, tolerance)
	r.record(model.StateValidating, "validated citations",
		model.Action{Kind: model.ActionValidate}, validationSummary(validation), false)

	attempts := 0
	for len(validation.InvalidCitations) > 0 && attempts < r.o.cfg.Validation.MaxFixAttempts {
		attempts++
		fixed, ferr := r.synthesize(ctx, system, prompt+llm.CitationFixNote(validation.InvalidCitations, len(sources)))
		if ferr != nil {
			return "", model.ValidationResult{}, "", ferr
		}
		text = fixed

		r.transition(model.StateValidating, "re-checking after corrective synthesis")
		validation = cite.Validate(text, sources, tolerance)
		r.record(model.StateValidating, "validated citations",
			model.Action{Kind: model.ActionValidate}, validationSummary(validation), false)
	}

	var warnings []string
	if len(validation.InvalidCitations) > 0 {
		warnings = append(warnings, fmt.Sprintf("%s: citations %v do not resolve to provided sources",
			model.ReasonCitationInvalid, validation.InvalidCitations))
	}
	if validation.TotalSentences > 0 {
		ratio := float64(len(validation.UnsupportedClaims)) / float64(validation.TotalSentences)
		if ratio > tolerance {
			warnings = append(warnings, fmt.Sprintf("%d of %d sentences carry claims without citations",
				len(validation.UnsupportedClaims), validation.TotalSentences))
		}
	}

	return text, validation, strings.Join(warnings, "; "), nil
}

func (r *run) degradedWarning() string {
	if r.degradedCalls == 0 {
		return ""
	}
	return fmt.Sprintf("%d retrieval calls degraded; evidence may be partial", r.degradedCalls)
}

func validationSummary(v model.ValidationResult) string {
	return fmt.Sprintf("valid=%t invalid_citations=%d unsupported=%d/%d unique_sources=%d",
		v.IsValid, len(v.InvalidCitations), len(v.UnsupportedClaims), v.TotalSentences, v.UniqueSources)
}

func actionFor(decision Decision) model.Action {
	kind := model.ActionRetrieveArchive
	if decision.Origin == model.OriginWeb {
		kind = model.ActionRetrieveWeb
	}
	if decision.Reformulate {
		kind = model.ActionReformulate
	}
	return model.Action{Kind: kind, Query: decision.Query}
}

func actionForState(state model.State) model.ActionKind {
	switch state {
	case model.StateSynthesizing:
		return model.ActionSynthesize
	case model.StateValidating:
		return model.ActionValidate
	case model.StateFailed:
		return model.ActionAbort
	default:
		return model.ActionAdvance
	}
}

func containsOrigin(origins []model.Origin, origin model.Origin) bool {
	for _, o := range origins {
		if o == origin {
			return true
		}
	}
	return false
}

func joinWarnings(warnings ...string) string {
	var parts []string
	for _, w := range warnings {
		if w != "" {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, "; ")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
