// Package report renders comparison verdicts for people and tools.
//
// Three formats are supported: human-readable text for terminals,
// JSON for programmatic consumers, and Markdown for documentation.
// A MultiWriter fans one report out to several destinations, e.g.
// the terminal and a file at once.
package report
