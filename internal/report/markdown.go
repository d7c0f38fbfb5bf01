package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/semdiff/semdiff/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeChanges(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with comparison information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *Report) {
	md.H1("Semantic Diff Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Verdict", w.getVerdictText(report)},
			{"Risk Score", strconv.Itoa(report.Response.Summary.RiskScore) + "/100"},
			{"Change Level", report.Response.Summary.SemanticChangeLevel.String()},
			{"Sensitivity", report.Sensitivity.String()},
			{"Analysis", w.getAnalysisText(report)},
			{"Text Size", fmt.Sprintf("%d / %d bytes", report.OriginalChars, report.GeneratedChars)},
		},
	})
	md.PlainText("")
}

// getVerdictText returns the verdict with a visual indicator.
func (w *MarkdownWriter) getVerdictText(report *Report) string {
	if report.Response.Summary.IsSafe {
		return "✅ SAFE"
	}
	return "❌ UNSAFE"
}

// getAnalysisText describes how the comparison ran.
func (w *MarkdownWriter) getAnalysisText(report *Report) string {
	switch {
	case report.ShortCircuited:
		return "skipped (near-identical texts)"
	case report.Chunked:
		return fmt.Sprintf("%d chunks via `%s`", report.ModelCalls, report.Model)
	default:
		return fmt.Sprintf("single pass via `%s`", report.Model)
	}
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *Report) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(report.CountBySeverity(model.SeverityCritical))},
			{"🟡 Warning", strconv.Itoa(report.CountBySeverity(model.SeverityWarning))},
			{"⚪ Info", strconv.Itoa(report.CountBySeverity(model.SeverityInfo))},
			{"**Total**", "**" + strconv.Itoa(report.TotalChanges()) + "**"},
		},
	})
	md.PlainText("")

	if report.HasChanges() {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *Report) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Change Severity Distribution"),
		piechart.WithShowData(true),
	)

	if n := report.CountBySeverity(model.SeverityCritical); n > 0 {
		chart.LabelAndIntValue("Critical", uint64(n))
	}
	if n := report.CountBySeverity(model.SeverityWarning); n > 0 {
		chart.LabelAndIntValue("Warning", uint64(n))
	}
	if n := report.CountBySeverity(model.SeverityInfo); n > 0 {
		chart.LabelAndIntValue("Info", uint64(n))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the verdict.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *Report) {
	summary := report.Response.Summary
	switch {
	case report.CountBySeverity(model.SeverityCritical) > 0:
		md.Cautionf(
			"Critical semantic changes detected! %d change(s) alter facts or intent.",
			report.CountBySeverity(model.SeverityCritical),
		)
	case !summary.IsSafe:
		md.Warningf(
			"Risk score %d is at or above the safety threshold. Review before publishing.",
			summary.RiskScore,
		)
	case report.CountBySeverity(model.SeverityWarning) > 0:
		md.Importantf(
			"%d change(s) may matter in context. A quick review is recommended.",
			report.CountBySeverity(model.SeverityWarning),
		)
	case report.TotalChanges() > 0:
		md.Note("Only informational changes detected.")
	default:
		md.Tip("No semantic changes detected. The rewrite preserves the original meaning.")
	}
	md.PlainText("")
}

// writeChanges writes all changes grouped by severity.
func (w *MarkdownWriter) writeChanges(md *markdown.Markdown, report *Report) {
	md.H2("Changes")
	md.PlainText("")

	if !report.HasChanges() {
		md.PlainText("No verified semantic changes.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityCritical, "### 🔴 Critical"},
		{model.SeverityWarning, "### 🟡 Warning"},
		{model.SeverityInfo, "### ⚪ Info"},
	}

	for _, sev := range severities {
		changes := report.ChangesBySeverity(sev.level)
		if len(changes) == 0 {
			continue
		}

		md.PlainText(sev.header)
		md.PlainText("")
		w.writeChangesTable(md, changes)
	}
}

// writeChangesTable writes a table of changes with details.
func (w *MarkdownWriter) writeChangesTable(md *markdown.Markdown, changes []model.Change) {
	headers := []string{"Type", "Description", "Original", "Generated"}

	rows := make([][]string, len(changes))
	for i, c := range changes {
		rows[i] = []string{
			c.Type.String(),
			truncateString(c.Description, 60),
			spanCell(c.OriginalSpan),
			spanCell(c.GeneratedSpan),
		}
	}

	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   rows,
	})
	md.PlainText("")

	// Add the model's reasoning as collapsible details
	for _, c := range changes {
		if c.Reasoning != "" {
			md.Details(truncateString(c.Description, 60), c.Reasoning)
		}
	}
	md.PlainText("")
}

// spanCell renders a span for a table cell: the quoted excerpt plus
// its byte position, or a dash for empty spans.
func spanCell(span model.TextSpan) string {
	if span.Text == "" {
		return "-"
	}
	text := strings.ReplaceAll(truncateString(span.Text, 40), "|", "\\|")
	return fmt.Sprintf("`%s` @%d", text, span.Start)
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [semdiff](https://github.com/semdiff/semdiff)*")
}
