package engine

import (
	"github.com/semdiff/semdiff/internal/model"
	"github.com/semdiff/semdiff/internal/ratelimit"
	"github.com/semdiff/semdiff/internal/text"
)

// State identifies how far a comparison has progressed through the
// analysis pipeline. Steps advance it as they complete, so a failure
// log always names the last phase that finished.
type State int

const (
	// StateReceived is the initial state before any step has run.
	StateReceived State = iota

	// StateAdmitted means the rate limiter accepted the request.
	StateAdmitted

	// StateCacheChecked means the cache was consulted and missed.
	StateCacheChecked

	// StateShortCircuited means the texts were near-identical and the
	// canonical safe response was produced without a model call.
	StateShortCircuited

	// StateChunked means the texts were segmented for analysis.
	StateChunked

	// StateDispatched means every chunk's model call returned a
	// decodable payload.
	StateDispatched

	// StateReconciled means every reported span was verified against
	// the sanitized texts or dropped.
	StateReconciled

	// StateMerged means chunk verdicts were folded into one response.
	StateMerged

	// StateCached means the merged response was stored for reuse.
	StateCached
)

// stateNames maps states to their log representation.
var stateNames = map[State]string{
	StateReceived:       "RECEIVED",
	StateAdmitted:       "ADMITTED",
	StateCacheChecked:   "CACHE_CHECKED",
	StateShortCircuited: "SHORT_CIRCUITED",
	StateChunked:        "CHUNKED",
	StateDispatched:     "DISPATCHED",
	StateReconciled:     "RECONCILED",
	StateMerged:         "MERGED",
	StateCached:         "CACHED",
}

// String returns the state's log representation.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// chunkVerdict is one chunk's decoded model output, paired with the
// chunk it describes so later steps can verify spans against the right
// slice of text and shift offsets into global coordinates.
type chunkVerdict struct {
	chunk     text.Chunk
	riskScore int
	level     model.RiskLevel
	changes   []model.Change
}

// analysis is the mutable value the pipeline steps share for one
// comparison. Steps read what earlier steps wrote and record their own
// results; Analyze converts the final state into a Result.
type analysis struct {
	req         Request
	sensitivity model.Sensitivity

	// original and generated are the sanitized texts. Every offset in
	// the response points into these, not into the raw request texts.
	original  string
	generated string

	cacheKey  string
	admission ratelimit.Decision
	verdicts  []chunkVerdict
	response  *model.DiffResponse

	state          State
	cacheHit       bool
	shortCircuited bool
	chunked        bool
	modelCalls     int
	droppedChanges int
}
