package text

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	spaceRuns = regexp.MustCompile(` {2,}`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// Normalize sanitizes raw input so that the model, the cache key, and
// the byte offsets reported to clients all see the same text.
//
// It applies, in order: Unicode NFKC normalization (smart quotes,
// ligatures, non-breaking spaces become their plain equivalents),
// removal of invisible and control characters (zero-width spaces, soft
// hyphens) except tab and line breaks, CRLF/CR to LF conversion,
// collapsing of space runs, and capping consecutive blank lines at one.
//
// Design decision: Normalization is idempotent — Normalize(Normalize(s))
// == Normalize(s) — so the engine can sanitize defensively without
// tracking whether input was already clean.
func Normalize(s string) string {
	if s == "" {
		return s
	}

	s = norm.NFKC.String(s)
	s = stripInvisible(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	s = blankRuns.ReplaceAllString(s, "\n\n")

	return s
}

// stripInvisible removes category-C code points (control, format,
// surrogate, private-use) that would silently break byte-offset
// matching between the model's output and the source text. Tab,
// newline, and carriage return survive; the carriage returns are
// folded into newlines by the caller.
func stripInvisible(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return r
		}
		if unicode.Is(unicode.C, r) {
			return -1
		}
		return r
	}, s)
}
