package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/semdiff/semdiff/internal/model"
)

// JSONWriter outputs the comparison verdict in JSON format, exactly as
// the HTTP API would return it. This format is designed for tool
// integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:   newBaseWriter(output),
		indent:       false,
		indentPrefix: "",
		indentString: "",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the verdict in JSON format.
func (w *JSONWriter) Write(report *Report) (int, error) {
	return w.writeJSON(report.Response)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps the verdict with run metadata.
//
// Design decision: We wrap the response rather than adding fields to
// DiffResponse because this allows output-specific context without
// polluting the API payload shape.
type JSONReport struct {
	// Version is the semdiff version that generated this report.
	Version string `json:"version"`

	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time `json:"generated_at"`

	// Sensitivity is the level the analysis ran at.
	Sensitivity string `json:"sensitivity"`

	// Model names the model that produced the verdict, empty when the
	// model was never consulted.
	Model string `json:"model,omitempty"`

	// OriginalChars and GeneratedChars are the sanitized text sizes.
	OriginalChars  int `json:"original_chars"`
	GeneratedChars int `json:"generated_chars"`

	// ShortCircuited, Chunked, ModelCalls, and DroppedChanges describe
	// how the comparison ran.
	ShortCircuited bool `json:"short_circuited"`
	Chunked        bool `json:"chunked"`
	ModelCalls     int  `json:"model_calls"`
	DroppedChanges int  `json:"dropped_changes"`

	// ElapsedMS is the comparison wall time in milliseconds.
	ElapsedMS int64 `json:"elapsed_ms"`

	// Response is the comparison verdict.
	Response *model.DiffResponse `json:"response"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(report *Report, version string) *JSONReport {
	return &JSONReport{
		Version:        version,
		GeneratedAt:    report.GeneratedAt,
		Sensitivity:    report.Sensitivity.String(),
		Model:          report.Model,
		OriginalChars:  report.OriginalChars,
		GeneratedChars: report.GeneratedChars,
		ShortCircuited: report.ShortCircuited,
		Chunked:        report.Chunked,
		ModelCalls:     report.ModelCalls,
		DroppedChanges: report.DroppedChanges,
		ElapsedMS:      report.Elapsed.Milliseconds(),
		Response:       report.Response,
	}
}

// FullJSONWriter outputs verdicts wrapped with run metadata.
type FullJSONWriter struct {
	*JSONWriter

	// version is the semdiff version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the verdict wrapped with metadata.
func (w *FullJSONWriter) Write(report *Report) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.version))
}
