package agent

import (
	"fmt"
	"strings"

	"github.com/avolkov/byline/internal/model"
)

// QueryContext is the task material a strategy builds queries from
type QueryContext struct {
	Headline string
	Thesis   string
	KeyFacts []string
	AllowWeb bool
}

// Snapshot is the read-only gathering state a strategy decides from
type Snapshot struct {
	Turn         int                       // 1-based gathering turn about to run
	Queries      map[model.Origin][]string // queries already issued per origin
	Yield        map[model.Origin]int      // items above the score floor per origin
	Reformulated map[model.Origin]bool     // the single reformulation was spent
	Degraded     map[model.Origin]bool     // last call to this origin was degraded
}

// Decision is the next gathering action a strategy picked
type Decision struct {
	Origin      model.Origin
	Query       string
	Reformulate bool   // this query is the origin's one reformulation
	Thought     string // recorded on the audit trail
}

// Strategy decides the next gathering action. Returning ok=false means every
// tool is exhausted and the loop should stop gathering. Implementations must
// be deterministic; an LLM-backed chooser can be plugged in here without
// touching the state machine.
type Strategy interface {
	Next(task QueryContext, s Snapshot) (Decision, bool)
}

// HeuristicStrategy is the default deterministic gathering policy:
// archive first, then web when allowed, then one reformulated query per
// zero-yield origin, then key-fact queries against origins that are
// producing, until the gate is satisfied or nothing is left to try.
type HeuristicStrategy struct{}

// Next picks the next origin and query
func (HeuristicStrategy) Next(task QueryContext, s Snapshot) (Decision, bool) {
	origins := []model.Origin{model.OriginArchive}
	if task.AllowWeb {
		origins = append(origins, model.OriginWeb)
	}

	// First pass: give every permitted origin its base query.
	for _, origin := range origins {
		if len(s.Queries[origin]) == 0 {
			return Decision{
				Origin:  origin,
				Query:   baseQuery(task),
				Thought: fmt.Sprintf("no %s evidence gathered yet, querying with headline and thesis", origin),
			}, true
		}
	}

	// Second pass: one reformulation for an origin that yielded nothing.
	// After that the origin is given up for the rest of the request.
	for _, origin := range origins {
		if s.Yield[origin] == 0 && !s.Reformulated[origin] {
			return Decision{
				Origin:      origin,
				Query:       reformulatedQuery(task),
				Reformulate: true,
				Thought:     fmt.Sprintf("%s returned nothing relevant, retrying once with key facts", origin),
			}, true
		}
	}

	// Third pass: origins that are producing absorb remaining turns with
	// key-fact queries to push the gate over its threshold.
	for _, fact := range task.KeyFacts {
		query := strings.TrimSpace(task.Headline + " " + fact)
		for _, origin := range origins {
			if s.Yield[origin] > 0 && !issued(s.Queries[origin], query) {
				return Decision{
					Origin:  origin,
					Query:   query,
					Thought: fmt.Sprintf("widening %s coverage with key fact", origin),
				}, true
			}
		}
	}

	return Decision{}, false
}

func issued(queries []string, query string) bool {
	for _, q := range queries {
		if q == query {
			return true
		}
	}
	return false
}

func baseQuery(task QueryContext) string {
	return strings.TrimSpace(task.Headline + " " + task.Thesis)
}

func reformulatedQuery(task QueryContext) string {
	if len(task.KeyFacts) > 0 {
		return strings.TrimSpace(task.Thesis + " " + strings.Join(task.KeyFacts, " "))
	}
	return task.Thesis
}
