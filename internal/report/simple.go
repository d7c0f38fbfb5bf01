package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/semdiff/semdiff/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting and indicator-coded severity levels.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no changes are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeChanges(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with comparison information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      SEMANTIC DIFF REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Verdict:        %s\n", report.Verdict()))
	sb.WriteString(fmt.Sprintf("Risk Score:     %d/100\n", report.Response.Summary.RiskScore))
	sb.WriteString(fmt.Sprintf("Change Level:   %s\n", report.Response.Summary.SemanticChangeLevel))
	sb.WriteString(fmt.Sprintf("Sensitivity:    %s\n", report.Sensitivity))
	if !report.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Date:           %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	}

	switch {
	case report.ShortCircuited:
		sb.WriteString("Analysis:       skipped, texts are near-identical\n")
	case report.Chunked:
		sb.WriteString(fmt.Sprintf("Analysis:       %d chunks via %s\n", report.ModelCalls, report.Model))
	default:
		sb.WriteString(fmt.Sprintf("Analysis:       single pass via %s\n", report.Model))
	}

	sb.WriteString("\n")
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *Report) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SEVERITY SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  CRITICAL: %d\n", report.CountBySeverity(model.SeverityCritical)))
	sb.WriteString(fmt.Sprintf("  WARNING:  %d\n", report.CountBySeverity(model.SeverityWarning)))
	sb.WriteString(fmt.Sprintf("  INFO:     %d\n", report.CountBySeverity(model.SeverityInfo)))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  TOTAL:    %d verified changes\n", report.TotalChanges()))
	if report.DroppedChanges > 0 {
		sb.WriteString(fmt.Sprintf("  DROPPED:  %d unverifiable model claims\n", report.DroppedChanges))
	}
	sb.WriteString("\n")
}

// writeChanges writes all changes grouped by severity.
func (w *SimpleWriter) writeChanges(sb *strings.Builder, report *Report) {
	if !report.HasChanges() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CHANGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	// Write changes in order of severity (critical first)
	severities := []model.Severity{
		model.SeverityCritical,
		model.SeverityWarning,
		model.SeverityInfo,
	}

	for _, severity := range severities {
		changes := report.ChangesBySeverity(severity)
		if len(changes) == 0 && !w.showEmpty {
			continue
		}

		w.writeChangesForSeverity(sb, severity, changes)
	}
}

// writeChangesForSeverity writes changes of a specific severity level.
func (w *SimpleWriter) writeChangesForSeverity(sb *strings.Builder, severity model.Severity, changes []model.Change) {
	indicator := w.getSeverityIndicator(severity)
	sb.WriteString(fmt.Sprintf("[%s] %s\n", indicator, strings.ToUpper(severity.String())))

	if len(changes) == 0 {
		sb.WriteString("  No changes\n\n")
		return
	}

	for _, change := range changes {
		sb.WriteString(fmt.Sprintf("  * [%s] %s\n", change.Type, change.Description))
		if change.OriginalSpan.Text != "" {
			sb.WriteString(fmt.Sprintf("    Original:  %q at byte %d\n",
				truncateString(change.OriginalSpan.Text, 60), change.OriginalSpan.Start))
		} else {
			sb.WriteString("    Original:  (nothing, content was added)\n")
		}
		if change.GeneratedSpan.Text != "" {
			sb.WriteString(fmt.Sprintf("    Generated: %q at byte %d\n",
				truncateString(change.GeneratedSpan.Text, 60), change.GeneratedSpan.Start))
		} else {
			sb.WriteString("    Generated: (nothing, content was removed)\n")
		}
		if w.verbose && change.Reasoning != "" {
			sb.WriteString(fmt.Sprintf("    Reasoning: %s\n", change.Reasoning))
		}
	}
	sb.WriteString("\n")
}

// getSeverityIndicator returns a visual indicator for the severity level.
func (w *SimpleWriter) getSeverityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityWarning:
		return "!"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by semdiff\n")
	sb.WriteString("https://github.com/semdiff/semdiff\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
