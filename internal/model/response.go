package model

// DiffSummary is the orchestrator's verdict over a whole comparison.
// It is always derived from the reconciled changes, never taken from
// the model's own claims.
type DiffSummary struct {
	// IsSafe is true when no critical change survived reconciliation
	// and the risk score stays below the configured safety threshold.
	IsSafe bool `json:"is_safe"`
	// RiskScore grades the overall drift from 0 (identical meaning)
	// to 100 (contradicts the original).
	RiskScore int `json:"risk_score"`
	// SemanticChangeLevel is the coarse classification of the drift.
	SemanticChangeLevel RiskLevel `json:"semantic_change_level"`
}

// DiffResponse is the outbound payload for a semantic comparison.
type DiffResponse struct {
	Summary DiffSummary `json:"summary"`
	// Changes lists every verified semantic change. It is never nil:
	// an equivalent pair of texts yields an empty slice.
	Changes []Change `json:"changes"`
}

// NewSafeResponse returns the canonical "no drift" response used when
// the two texts are near-identical and the model is never consulted.
func NewSafeResponse() *DiffResponse {
	return &DiffResponse{
		Summary: DiffSummary{
			IsSafe:              true,
			RiskScore:           0,
			SemanticChangeLevel: RiskNone,
		},
		Changes: []Change{},
	}
}

// ClampRiskScore forces a model-reported score into the valid [0,100]
// range.
func ClampRiskScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
