package text

import (
	"strings"
	"testing"
)

func TestRatio(t *testing.T) {
	t.Parallel()

	t.Run("identical strings score one", func(t *testing.T) {
		t.Parallel()

		if got := Ratio("same text", "same text"); got != 1.0 {
			t.Errorf("Ratio() = %v, want 1.0", got)
		}
	})

	t.Run("both empty score one", func(t *testing.T) {
		t.Parallel()

		if got := Ratio("", ""); got != 1.0 {
			t.Errorf("Ratio() = %v, want 1.0", got)
		}
	})

	t.Run("disjoint strings score zero", func(t *testing.T) {
		t.Parallel()

		if got := Ratio("aaaa", "bbbb"); got != 0.0 {
			t.Errorf("Ratio() = %v, want 0.0", got)
		}
	})

	t.Run("one empty side scores zero", func(t *testing.T) {
		t.Parallel()

		if got := Ratio("something", ""); got != 0.0 {
			t.Errorf("Ratio() = %v, want 0.0", got)
		}
	})

	t.Run("single byte change in long text stays above 0.99", func(t *testing.T) {
		t.Parallel()

		a := strings.Repeat("The patient should take the medication daily. ", 30)
		b := a[:100] + "X" + a[101:]

		got := Ratio(a, b)
		if got <= 0.99 || got >= 1.0 {
			t.Errorf("Ratio() = %v, want in (0.99, 1.0)", got)
		}
	})

	t.Run("substantial rewrite scores well below threshold", func(t *testing.T) {
		t.Parallel()

		a := "Take 50mg of the medication twice daily with food."
		b := "Take 5mg of the medication once weekly on an empty stomach."

		if got := Ratio(a, b); got > 0.9 {
			t.Errorf("Ratio() = %v, want at most 0.9", got)
		}
	})
}
