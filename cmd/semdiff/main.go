// Package main provides the entry point for the semdiff CLI.
//
// semdiff audits machine-generated rewrites of a text against the
// original, using a language model to find semantic drift: changed
// facts, dropped caveats, shifted tone.
//
// Usage:
//
//	semdiff compare original.txt generated.txt
//	semdiff serve --listen :8080
//
// See --help for all available options.
package main

// main is the entry point for semdiff.
func main() {
	Execute()
}
