// Package model defines the core data structures used throughout semdiff.
//
// This package contains the following main types:
//   - CompareRequest: An inbound request to compare two texts
//   - DiffResponse: The analysis result with its summary verdict
//   - Change: A single verified semantic difference
//   - TextSpan: A character-exact excerpt location in one text
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (engine, llm, server, report) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for the HTTP API, the
// response cache, and report output. Enum types are forgiving when decoding
// model output: language models routinely emit synonyms and casing variants,
// and a readable degraded value beats a failed analysis.
package model
