package engine

import (
	"github.com/semdiff/semdiff/internal/model"
	"github.com/semdiff/semdiff/internal/text"
)

// mergeVerdicts folds per-chunk verdicts into the final response.
//
// Offsets are shifted by each side's own chunk offset, so a span keeps
// pointing at the text it quotes after the shift. The summary is the
// pessimistic fold: the highest chunk risk score, the most severe
// change level observed, and a safety flag derived from the surviving
// changes. One dangerous chunk makes the whole comparison dangerous no
// matter how clean its siblings are, which is why scores are never
// averaged.
//
// Context fingerprints are rebuilt from the full texts after the
// shift. The model quoted context from inside a single chunk; spans
// near a chunk boundary would otherwise carry truncated fingerprints.
func mergeVerdicts(verdicts []chunkVerdict, original, generated string, safetyThreshold int) *model.DiffResponse {
	changes := make([]model.Change, 0)
	riskScore := 0
	level := model.RiskNone
	hasCritical := false

	for _, v := range verdicts {
		for _, change := range v.changes {
			shiftSpan(&change.OriginalSpan, v.chunk.OriginalOffset, original)
			shiftSpan(&change.GeneratedSpan, v.chunk.GeneratedOffset, generated)
			if change.Severity == model.SeverityCritical {
				hasCritical = true
			}
			changes = append(changes, change)
		}
		if v.riskScore > riskScore {
			riskScore = v.riskScore
		}
		if v.level > level {
			level = v.level
		}
	}

	return &model.DiffResponse{
		Summary: model.DiffSummary{
			IsSafe:              !hasCritical && riskScore < safetyThreshold,
			RiskScore:           riskScore,
			SemanticChangeLevel: level,
		},
		Changes: changes,
	}
}

// shiftSpan moves a chunk-local span into global coordinates and
// refreshes its context fingerprints from the full text.
func shiftSpan(span *model.TextSpan, offset int, full string) {
	span.Start += offset
	span.End += offset
	span.ContextBefore, span.ContextAfter = text.Context(full, span.Start, span.End, contextWindow)
}
