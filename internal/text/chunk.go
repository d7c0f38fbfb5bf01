package text

import "strings"

// defaultTargetSize is the fallback per-segment size when Split is
// called with a non-positive target.
const defaultTargetSize = 3000

// Chunk pairs a slice of the original text with the corresponding
// slice of the generated text for independent analysis. Offsets locate
// each side in its full text so that per-chunk span positions can be
// translated back to global positions:
//
//	original[chunk.OriginalOffset : chunk.OriginalOffset+len(chunk.Original)] == chunk.Original
//
// and likewise for the generated side. A side may be empty when one
// text produced fewer segments than the other; an empty side's offset
// is the length of its full text, keeping the slicing identity valid.
type Chunk struct {
	Original        string
	Generated       string
	OriginalOffset  int
	GeneratedOffset int
}

// segment is a literal substring of a source text together with its
// byte offset.
type segment struct {
	text   string
	offset int
}

// Split cuts both texts into segments of at most target bytes and
// pairs them index-wise. Each side is segmented independently on
// paragraph boundaries (blank lines); paragraphs larger than the
// target are split further on sentence-terminal boundaries. A segment
// is never cut mid-word: an indivisible oversized sentence stays
// whole, producing a segment over the target.
//
// Design decision: Boundaries on the two sides are chosen
// independently and pairs are aligned by index, not by content.
// A change that straddles a boundary on either side may be missed;
// that trade-off buys parallel analysis of arbitrarily long inputs
// without a cross-text alignment pass.
//
// Chunks where both sides are empty are dropped: there is nothing to
// analyze in them.
func Split(original, generated string, target int) []Chunk {
	if target <= 0 {
		target = defaultTargetSize
	}

	origSegs := splitSide(original, target)
	genSegs := splitSide(generated, target)

	n := max(len(origSegs), len(genSegs))
	chunks := make([]Chunk, 0, n)
	for i := 0; i < n; i++ {
		c := Chunk{
			OriginalOffset:  len(original),
			GeneratedOffset: len(generated),
		}
		if i < len(origSegs) {
			c.Original = origSegs[i].text
			c.OriginalOffset = origSegs[i].offset
		}
		if i < len(genSegs) {
			c.Generated = genSegs[i].text
			c.GeneratedOffset = genSegs[i].offset
		}
		if c.Original == "" && c.Generated == "" {
			continue
		}
		chunks = append(chunks, c)
	}

	return chunks
}

// splitSide segments one text: paragraphs are packed greedily up to
// the target size, with oversized paragraphs pre-split into sentences.
// Every returned segment satisfies source[offset:offset+len(text)] ==
// text; separator bytes between segments belong to no segment.
func splitSide(source string, target int) []segment {
	if len(source) <= target {
		return []segment{{text: source, offset: 0}}
	}

	var units []segment
	for _, p := range paragraphs(source) {
		if len(p.text) > target {
			units = append(units, sentences(p)...)
			continue
		}
		units = append(units, p)
	}

	segs := make([]segment, 0, len(source)/target+1)
	segStart := units[0].offset
	segEnd := units[0].offset + len(units[0].text)
	for _, u := range units[1:] {
		uEnd := u.offset + len(u.text)
		if uEnd-segStart > target && segEnd > segStart {
			segs = append(segs, segment{text: source[segStart:segEnd], offset: segStart})
			segStart = u.offset
		}
		segEnd = uEnd
	}
	segs = append(segs, segment{text: source[segStart:segEnd], offset: segStart})

	return segs
}

// paragraphs splits source on blank lines ("\n\n"), recording each
// paragraph's byte offset. Consecutive separators yield empty
// paragraphs, which pack away harmlessly.
func paragraphs(source string) []segment {
	var paras []segment
	offset := 0
	for {
		i := strings.Index(source[offset:], "\n\n")
		if i < 0 {
			paras = append(paras, segment{text: source[offset:], offset: offset})
			return paras
		}
		paras = append(paras, segment{text: source[offset : offset+i], offset: offset})
		offset += i + 2
	}
}

// sentences splits an oversized paragraph at sentence-terminal
// boundaries: '.', '!' or '?' followed by a space, a newline, or the
// end of the paragraph. Whitespace after a terminal belongs to no
// unit. A paragraph with no terminal comes back as a single unit.
func sentences(p segment) []segment {
	var units []segment
	start := 0
	for i := 0; i < len(p.text); i++ {
		if !sentenceEnd(p.text, i) {
			continue
		}
		units = append(units, segment{text: p.text[start : i+1], offset: p.offset + start})
		start = i + 1
		for start < len(p.text) && (p.text[start] == ' ' || p.text[start] == '\n') {
			start++
		}
		i = start - 1
	}
	if start < len(p.text) {
		units = append(units, segment{text: p.text[start:], offset: p.offset + start})
	}
	if len(units) == 0 {
		return []segment{p}
	}
	return units
}

func sentenceEnd(s string, i int) bool {
	switch s[i] {
	case '.', '!', '?':
	default:
		return false
	}
	if i+1 == len(s) {
		return true
	}
	return s[i+1] == ' ' || s[i+1] == '\n'
}

// Context returns the at-most-n bytes immediately before and after the
// span [start, end) in s. Out-of-range bounds are clamped rather than
// panicking, so the fingerprints of a span produced by arithmetic on
// model output are always well defined.
func Context(s string, start, end, n int) (before, after string) {
	if start < 0 {
		start = 0
	}
	if start > len(s) {
		start = len(s)
	}
	if end < start {
		end = start
	}
	if end > len(s) {
		end = len(s)
	}

	b := start - n
	if b < 0 {
		b = 0
	}
	a := end + n
	if a > len(s) {
		a = len(s)
	}

	return s[b:start], s[end:a]
}
