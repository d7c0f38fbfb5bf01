package text

import "github.com/sergi/go-diff/diffmatchpatch"

// Ratio returns a normalized similarity measure in [0, 1] between two
// strings: 2·(equal bytes) / (len(a) + len(b)). Identical strings score
// 1.0, fully disjoint strings 0.0.
//
// The measure is computed from a character-level diff. The differ runs
// under its default internal deadline, after which it may report fewer
// equalities than a full diff would; that only lowers the score, so a
// caller using Ratio as a "nearly identical" gate never gets a false
// positive from the deadline.
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a)+len(b) == 0 {
		return 1.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)

	equal := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			equal += len(d.Text)
		}
	}

	return float64(2*equal) / float64(len(a)+len(b))
}
