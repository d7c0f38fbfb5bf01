package report

import (
	"io"
	"time"

	"github.com/semdiff/semdiff/internal/model"
)

// Report pairs a comparison verdict with the run metadata collected
// around it. Writers render it in their own format; the verdict itself
// is never recomputed here.
type Report struct {
	// Response is the comparison verdict.
	Response *model.DiffResponse

	// Sensitivity is the level the analysis ran at.
	Sensitivity model.Sensitivity

	// Model names the model that produced the verdict. Empty when the
	// model was never consulted.
	Model string

	// OriginalChars and GeneratedChars are the sanitized text sizes.
	OriginalChars  int
	GeneratedChars int

	// ShortCircuited reports that the texts were near-identical and
	// the model was skipped.
	ShortCircuited bool

	// Chunked reports that the texts were segmented for analysis.
	Chunked bool

	// ModelCalls is the number of chunk analyses dispatched.
	ModelCalls int

	// DroppedChanges counts model claims discarded during span
	// verification.
	DroppedChanges int

	// Elapsed is the wall time of the whole comparison.
	Elapsed time.Duration

	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time
}

// Verdict returns the headline safety verdict.
func (r *Report) Verdict() string {
	if r.Response != nil && r.Response.Summary.IsSafe {
		return "SAFE"
	}
	return "UNSAFE"
}

// TotalChanges returns how many verified changes the report carries.
func (r *Report) TotalChanges() int {
	if r.Response == nil {
		return 0
	}
	return len(r.Response.Changes)
}

// HasChanges reports whether any verified change survived.
func (r *Report) HasChanges() bool {
	return r.TotalChanges() > 0
}

// CountBySeverity returns how many changes carry the given severity.
func (r *Report) CountBySeverity(sev model.Severity) int {
	return len(r.ChangesBySeverity(sev))
}

// ChangesBySeverity returns the changes of one severity, keeping the
// response order.
func (r *Report) ChangesBySeverity(sev model.Severity) []model.Change {
	if r.Response == nil {
		return nil
	}
	var out []model.Change
	for _, c := range r.Response.Changes {
		if c.Severity == sev {
			out = append(out, c)
		}
	}
	return out
}

// Writer defines the interface for report output.
// Implementations write comparison results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *Report) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
