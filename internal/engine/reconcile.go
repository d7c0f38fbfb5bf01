package engine

import (
	"log/slog"
	"strings"

	"github.com/semdiff/semdiff/internal/model"
)

// reconcileChanges verifies every change's spans against the chunk
// texts they quote. Changes whose spans verify (possibly after repair)
// are kept with corrected offsets; changes quoting text that appears
// nowhere in the source are dropped and counted. A dropped change is
// never partially kept: both spans verify or the change goes.
func reconcileChanges(changes []model.Change, original, generated string, logger *slog.Logger) (kept []model.Change, dropped int) {
	kept = make([]model.Change, 0, len(changes))
	for _, change := range changes {
		if reconcileSpan(&change.OriginalSpan, original) &&
			reconcileSpan(&change.GeneratedSpan, generated) {
			kept = append(kept, change)
			continue
		}

		dropped++
		logger.Warn("dropping unverifiable change",
			"id", change.ID,
			"type", change.Type,
			"severity", change.Severity,
			"original_text", change.OriginalSpan.Text,
			"generated_text", change.GeneratedSpan.Text,
		)
	}
	return kept, dropped
}

// reconcileSpan verifies one span in place. Verification runs in
// phases, mirroring how span drift actually happens: models quote text
// faithfully far more often than they count offsets correctly.
//
//  1. Exact: the claimed range already yields the quoted text.
//  2. Fingerprint: the quoted text wrapped in its context fingerprints
//     occurs in the source; the match relocates the span. Fingerprints
//     disambiguate repeated phrases, so this runs before the bare
//     search.
//  3. Occurrence: the quoted text occurs somewhere; the first
//     occurrence relocates the span.
//
// A span quoting text that appears nowhere fails verification: the
// model is describing a source that does not exist.
//
// Spans with no quoted text anchor pure omissions and additions. They
// have nothing to verify, so only their insertion point is clamped
// into range.
func reconcileSpan(span *model.TextSpan, source string) bool {
	if span.Text == "" {
		if span.Start < 0 {
			span.Start = 0
		}
		if span.Start > len(source) {
			span.Start = len(source)
		}
		span.End = span.Start
		return true
	}

	if span.Start >= 0 && span.Start <= span.End && span.End <= len(source) &&
		source[span.Start:span.End] == span.Text {
		return true
	}

	if span.ContextBefore != "" || span.ContextAfter != "" {
		fingerprint := span.ContextBefore + span.Text + span.ContextAfter
		if i := strings.Index(source, fingerprint); i >= 0 {
			span.Start = i + len(span.ContextBefore)
			span.End = span.Start + len(span.Text)
			return true
		}
	}

	if i := strings.Index(source, span.Text); i >= 0 {
		span.Start = i
		span.End = i + len(span.Text)
		return true
	}

	return false
}
