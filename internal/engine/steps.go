package engine

import (
	"context"
	"fmt"

	"github.com/semdiff/semdiff/internal/cache"
	"github.com/semdiff/semdiff/internal/llm"
	"github.com/semdiff/semdiff/internal/model"
	"github.com/semdiff/semdiff/internal/pipeline"
	"github.com/semdiff/semdiff/internal/text"
)

// admitStep consults the rate limiter. Requests without a caller ID
// bypass admission; that path is for local one-shot runs, not the API.
type admitStep struct {
	engine *Engine
}

// Do implements pipeline.Step.
func (s *admitStep) Do(_ context.Context, a *analysis) error {
	if a.req.CallerID == "" || s.engine.limiter == nil {
		a.state = StateAdmitted
		return nil
	}

	decision := s.engine.limiter.Admit(a.req.CallerID, 1)
	a.admission = decision
	if !decision.Allowed {
		return &AdmissionError{Decision: decision}
	}

	a.state = StateAdmitted
	return nil
}

// Name implements pipeline.Step.
func (s *admitStep) Name() string { return "admit" }

// cacheLookupStep serves the response from cache when an identical
// sanitized comparison at the same sensitivity is still fresh.
type cacheLookupStep struct {
	engine *Engine
}

// Do implements pipeline.Step.
func (s *cacheLookupStep) Do(_ context.Context, a *analysis) error {
	if s.engine.cache == nil {
		a.state = StateCacheChecked
		return nil
	}

	a.cacheKey = cache.Key(a.original, a.generated, a.sensitivity.String())
	if resp, ok := s.engine.cache.Get(a.cacheKey); ok {
		a.response = resp
		a.cacheHit = true
		a.state = StateCached
		return pipeline.ErrHalt
	}

	a.state = StateCacheChecked
	return nil
}

// Name implements pipeline.Step.
func (s *cacheLookupStep) Name() string { return "cache-lookup" }

// shortCircuitStep answers near-identical texts with the canonical
// safe response. The similarity check is pure: nothing is cached, no
// model is consulted.
type shortCircuitStep struct {
	engine *Engine
}

// Do implements pipeline.Step.
func (s *shortCircuitStep) Do(_ context.Context, a *analysis) error {
	ratio := text.Ratio(a.original, a.generated)
	if ratio <= s.engine.similarityThreshold {
		return nil
	}

	s.engine.logger.Debug("texts near-identical, skipping model",
		"ratio", ratio,
		"threshold", s.engine.similarityThreshold,
	)
	a.response = model.NewSafeResponse()
	a.shortCircuited = true
	a.state = StateShortCircuited
	return pipeline.ErrHalt
}

// Name implements pipeline.Step.
func (s *shortCircuitStep) Name() string { return "short-circuit" }

// chunkStep segments the texts when their combined size exceeds the
// threshold. Small comparisons travel the same path as chunked ones in
// a single full-width chunk, so every later step handles exactly one
// shape.
type chunkStep struct {
	engine *Engine
}

// Do implements pipeline.Step.
func (s *chunkStep) Do(_ context.Context, a *analysis) error {
	if len(a.original)+len(a.generated) > s.engine.chunkThreshold {
		chunks := text.Split(a.original, a.generated, s.engine.chunkTarget)
		a.verdicts = make([]chunkVerdict, len(chunks))
		for i, c := range chunks {
			a.verdicts[i].chunk = c
		}
		a.chunked = true
	}
	if len(a.verdicts) == 0 {
		a.verdicts = []chunkVerdict{{chunk: text.Chunk{
			Original:  a.original,
			Generated: a.generated,
		}}}
	}

	s.engine.logger.Debug("texts segmented",
		"chunks", len(a.verdicts),
		"original_bytes", len(a.original),
		"generated_bytes", len(a.generated),
	)
	a.state = StateChunked
	return nil
}

// Name implements pipeline.Step.
func (s *chunkStep) Name() string { return "chunk" }

// dispatchStep sends every chunk to the model concurrently and decodes
// the payloads. One undecodable payload fails the whole comparison: a
// partial verdict that silently skipped a chunk would report a risk
// assessment we never made.
type dispatchStep struct {
	engine *Engine
}

// Do implements pipeline.Step.
func (s *dispatchStep) Do(ctx context.Context, a *analysis) error {
	systemPrompt := llm.SystemPrompt(a.sensitivity)

	verdicts, err := pipeline.Map(ctx, a.verdicts, s.engine.maxParallel,
		func(ctx context.Context, i int, v chunkVerdict) (chunkVerdict, error) {
			call := llm.Call{
				SystemPrompt: systemPrompt,
				UserPrompt:   llm.UserPrompt(v.chunk.Original, v.chunk.Generated),
				Premium:      a.req.Premium,
			}
			raw, err := s.engine.invoker.Analyze(ctx, call)
			if err != nil {
				return chunkVerdict{}, fmt.Errorf("chunk %d: %w", i, err)
			}

			parsed, err := parseVerdict(raw)
			if err != nil {
				return chunkVerdict{}, fmt.Errorf("chunk %d: %w", i, err)
			}
			parsed.chunk = v.chunk
			return parsed, nil
		})
	if err != nil {
		return err
	}

	a.verdicts = verdicts
	a.modelCalls = len(verdicts)
	a.state = StateDispatched
	return nil
}

// Name implements pipeline.Step.
func (s *dispatchStep) Name() string { return "dispatch" }

// reconcileStep verifies every reported span against the chunk it was
// quoted from, repairing drifted offsets and dropping changes whose
// quoted text cannot be found at all.
type reconcileStep struct {
	engine *Engine
}

// Do implements pipeline.Step.
func (s *reconcileStep) Do(_ context.Context, a *analysis) error {
	for i := range a.verdicts {
		v := &a.verdicts[i]
		kept, dropped := reconcileChanges(v.changes, v.chunk.Original, v.chunk.Generated, s.engine.logger)
		v.changes = kept
		a.droppedChanges += dropped
	}

	a.state = StateReconciled
	return nil
}

// Name implements pipeline.Step.
func (s *reconcileStep) Name() string { return "reconcile" }

// mergeStep folds chunk verdicts into the final response: offsets are
// shifted into global coordinates and the summary is derived from the
// surviving changes.
type mergeStep struct {
	engine *Engine
}

// Do implements pipeline.Step.
func (s *mergeStep) Do(_ context.Context, a *analysis) error {
	a.response = mergeVerdicts(a.verdicts, a.original, a.generated, s.engine.safetyThreshold)
	a.state = StateMerged
	return nil
}

// Name implements pipeline.Step.
func (s *mergeStep) Name() string { return "merge" }

// cacheStoreStep records the merged response for reuse.
type cacheStoreStep struct {
	engine *Engine
}

// Do implements pipeline.Step.
func (s *cacheStoreStep) Do(_ context.Context, a *analysis) error {
	if s.engine.cache == nil {
		return nil
	}

	s.engine.cache.Put(a.cacheKey, a.response)
	a.state = StateCached
	return nil
}

// Name implements pipeline.Step.
func (s *cacheStoreStep) Name() string { return "cache-store" }
