package engine

import (
	"testing"

	"github.com/semdiff/semdiff/internal/model"
	"github.com/semdiff/semdiff/internal/text"
)

func TestMergeVerdicts(t *testing.T) {
	t.Parallel()

	t.Run("offsets shift by each side's own chunk offset", func(t *testing.T) {
		t.Parallel()

		// The two sides chunk at different boundaries, so the same
		// change carries different offsets per side.
		original := "aaaa bbbb cccc dddd"
		generated := "aaaa eeee cccc dddd extra tail"

		verdicts := []chunkVerdict{{
			chunk: text.Chunk{
				Original:        original[5:],
				Generated:       generated[5:],
				OriginalOffset:  5,
				GeneratedOffset: 5,
			},
			riskScore: 40,
			level:     model.RiskModerate,
			changes: []model.Change{{
				ID:            "c1",
				Severity:      model.SeverityWarning,
				OriginalSpan:  model.TextSpan{Text: "bbbb", Start: 0, End: 4},
				GeneratedSpan: model.TextSpan{Text: "eeee", Start: 0, End: 4},
			}},
		}}

		resp := mergeVerdicts(verdicts, original, generated, DefaultSafetyThreshold)
		if len(resp.Changes) != 1 {
			t.Fatalf("changes = %d, want 1", len(resp.Changes))
		}

		o := resp.Changes[0].OriginalSpan
		if o.Start != 5 || o.End != 9 {
			t.Errorf("original span = [%d,%d), want [5,9)", o.Start, o.End)
		}
		if original[o.Start:o.End] != o.Text {
			t.Errorf("original[%d:%d] = %q, want %q", o.Start, o.End, original[o.Start:o.End], o.Text)
		}
		g := resp.Changes[0].GeneratedSpan
		if generated[g.Start:g.End] != g.Text {
			t.Errorf("generated[%d:%d] = %q, want %q", g.Start, g.End, generated[g.Start:g.End], g.Text)
		}
	})

	t.Run("risk is the worst chunk, never an average", func(t *testing.T) {
		t.Parallel()

		verdicts := []chunkVerdict{
			{riskScore: 10, level: model.RiskMinor},
			{riskScore: 90, level: model.RiskCritical},
			{riskScore: 0, level: model.RiskNone},
		}

		resp := mergeVerdicts(verdicts, "", "", DefaultSafetyThreshold)
		if resp.Summary.RiskScore != 90 {
			t.Errorf("RiskScore = %d, want 90", resp.Summary.RiskScore)
		}
		if resp.Summary.SemanticChangeLevel != model.RiskCritical {
			t.Errorf("level = %v, want CRITICAL", resp.Summary.SemanticChangeLevel)
		}
		if resp.Summary.IsSafe {
			t.Error("IsSafe = true at risk 90, want false")
		}
	})

	t.Run("critical change forces unsafe at low risk", func(t *testing.T) {
		t.Parallel()

		verdicts := []chunkVerdict{{
			riskScore: 10,
			level:     model.RiskMinor,
			changes: []model.Change{{
				ID:       "c1",
				Severity: model.SeverityCritical,
			}},
		}}

		resp := mergeVerdicts(verdicts, "", "", DefaultSafetyThreshold)
		if resp.Summary.IsSafe {
			t.Error("IsSafe = true with a critical change, want false")
		}
		if resp.Summary.RiskScore != 10 {
			t.Errorf("RiskScore = %d, want 10", resp.Summary.RiskScore)
		}
	})

	t.Run("risk at threshold is unsafe", func(t *testing.T) {
		t.Parallel()

		verdicts := []chunkVerdict{{riskScore: 50, level: model.RiskModerate}}
		resp := mergeVerdicts(verdicts, "", "", DefaultSafetyThreshold)
		if resp.Summary.IsSafe {
			t.Error("IsSafe = true at the threshold, want false")
		}

		verdicts[0].riskScore = 49
		resp = mergeVerdicts(verdicts, "", "", DefaultSafetyThreshold)
		if !resp.Summary.IsSafe {
			t.Error("IsSafe = false below the threshold, want true")
		}
	})

	t.Run("fingerprints rebuilt from the full text", func(t *testing.T) {
		t.Parallel()

		// The span starts at its chunk's first byte, so any chunk-local
		// fingerprint would be empty. The merged span must quote the
		// preceding chunk's bytes instead.
		original := "HEAD and the tail follows"
		generated := original

		verdicts := []chunkVerdict{{
			chunk: text.Chunk{
				Original:        original[9:],
				Generated:       generated[9:],
				OriginalOffset:  9,
				GeneratedOffset: 9,
			},
			riskScore: 5,
			level:     model.RiskMinor,
			changes: []model.Change{{
				ID:            "c1",
				OriginalSpan:  model.TextSpan{Text: "the", Start: 0, End: 3},
				GeneratedSpan: model.TextSpan{Text: "the", Start: 0, End: 3},
			}},
		}}

		resp := mergeVerdicts(verdicts, original, generated, DefaultSafetyThreshold)
		o := resp.Changes[0].OriginalSpan
		if o.ContextBefore != " and " {
			t.Errorf("ContextBefore = %q, want %q", o.ContextBefore, " and ")
		}
		if o.ContextAfter != " tail" {
			t.Errorf("ContextAfter = %q, want %q", o.ContextAfter, " tail")
		}
	})

	t.Run("no verdicts yields the safe shape", func(t *testing.T) {
		t.Parallel()

		resp := mergeVerdicts(nil, "", "", DefaultSafetyThreshold)
		if !resp.Summary.IsSafe || resp.Summary.RiskScore != 0 ||
			resp.Summary.SemanticChangeLevel != model.RiskNone {
			t.Errorf("summary = %+v, want safe zero summary", resp.Summary)
		}
		if resp.Changes == nil || len(resp.Changes) != 0 {
			t.Errorf("changes = %v, want empty non-nil slice", resp.Changes)
		}
	})
}
