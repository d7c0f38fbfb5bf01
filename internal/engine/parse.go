package engine

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/semdiff/semdiff/internal/model"
)

// wireSummary is the summary block as the model emits it. The model's
// own is_safe claim is deliberately absent: safety is always derived
// from the changes that survive reconciliation, never trusted.
type wireSummary struct {
	RiskScore           int             `json:"risk_score"`
	SemanticChangeLevel model.RiskLevel `json:"semantic_change_level"`
}

// wirePayload is one chunk's full analysis as the model emits it. The
// summary pointer distinguishes a missing block from a zero one.
type wirePayload struct {
	Summary *wireSummary   `json:"summary"`
	Changes []model.Change `json:"changes"`
}

// parseVerdict decodes one chunk's model payload. Enum fields inside
// changes are forgiving (unknown severities and types fall back to
// review-worthy defaults), but a payload that does not decode or lacks
// its summary block fails the comparison: a silently skipped chunk
// would produce a verdict over text we never analyzed.
//
// Changes arriving without an ID are assigned one here, so every
// change a caller sees is addressable.
func parseVerdict(raw json.RawMessage) (chunkVerdict, error) {
	var payload wirePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return chunkVerdict{}, fmt.Errorf("%w: %w", ErrBadAnalysis, err)
	}
	if payload.Summary == nil {
		return chunkVerdict{}, fmt.Errorf("%w: payload has no summary", ErrBadAnalysis)
	}

	changes := payload.Changes
	if changes == nil {
		changes = []model.Change{}
	}
	for i := range changes {
		if changes[i].ID == "" {
			changes[i].ID = uuid.NewString()
		}
	}

	return chunkVerdict{
		riskScore: model.ClampRiskScore(payload.Summary.RiskScore),
		level:     payload.Summary.SemanticChangeLevel,
		changes:   changes,
	}, nil
}
