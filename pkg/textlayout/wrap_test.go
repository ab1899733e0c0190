package textlayout

import (
	"math"
	"strings"
	"testing"
)

const fox = "The quick brown fox jumps over the lazy dog and keeps running"

// TestJustifyScenario wraps the fox caption at four words per line with two
// lines allowed. It expects the second line to carry every remaining word and
// the first line to be justified with gaps wider than a space.
func TestJustifyScenario(t *testing.T) {
	m := FixedMeasurer(10)
	lines := WrapAndJustify(fox, 200, 500, 100, 35, 2, m)

	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %+v", len(lines), lines)
	}
	if lines[0].Text != "The quick brown fox" {
		t.Fatalf("line 1 = %q", lines[0].Text)
	}
	if lines[1].Text != "jumps over the lazy dog and keeps running" {
		t.Fatalf("line 2 = %q", lines[1].Text)
	}

	first := lines[0]
	if !first.Justified() {
		t.Fatal("line 1 should be justified")
	}
	if first.WordX[0] != 400 {
		t.Fatalf("justified line starts at %v, want x - maxWidth/2 = 400", first.WordX[0])
	}
	space := m.MeasureWidth(" ")
	for i := 1; i < len(first.Words); i++ {
		gap := first.WordX[i] - (first.WordX[i-1] + m.MeasureWidth(first.Words[i-1]))
		if gap <= space {
			t.Fatalf("gap %d = %v, want wider than a space (%v)", i, gap, space)
		}
	}
	end := first.WordX[len(first.WordX)-1] + m.MeasureWidth(first.Words[len(first.Words)-1])
	if math.Abs(end-600) > 1e-9 {
		t.Fatalf("justified line ends at %v, want 600", end)
	}

	if lines[1].Justified() || lines[1].Align != AlignCenter {
		t.Fatal("last line must be centred, not justified")
	}
	if lines[1].Y != 135 {
		t.Fatalf("line 2 y = %v, want 135", lines[1].Y)
	}
}

// TestJustifyNeverDropsWords checks, for many widths and line limits, that
// the result has at most maxLines lines and reproduces the input word
// sequence exactly.
func TestJustifyNeverDropsWords(t *testing.T) {
	inputs := []string{
		fox,
		"a",
		"supercalifragilisticexpialidocious is long",
		"  spaced   out\twords\n here ",
	}
	m := FixedMeasurer(7)
	for _, in := range inputs {
		for maxLines := 1; maxLines <= 5; maxLines++ {
			for _, width := range []float64{10, 50, 120, 400, 2000} {
				lines := WrapAndJustify(in, width, 0, 0, 10, maxLines, m)
				if len(lines) > maxLines {
					t.Fatalf("%q width=%v: %d lines > max %d", in, width, len(lines), maxLines)
				}
				var got []string
				for _, l := range lines {
					got = append(got, strings.Fields(l.Text)...)
				}
				if strings.Join(got, " ") != strings.Join(strings.Fields(in), " ") {
					t.Fatalf("%q width=%v maxLines=%d lost words: %q", in, width, maxLines, got)
				}
			}
		}
	}
}

// TestJustifySingleLineNotJustified makes sure a caption that fits on one
// line is centred with no spacing applied.
func TestJustifySingleLineNotJustified(t *testing.T) {
	lines := WrapAndJustify("short caption", 1000, 50, 0, 10, 3, FixedMeasurer(10))
	if len(lines) != 1 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0].Justified() || lines[0].Align != AlignCenter || lines[0].X != 50 {
		t.Fatalf("single line = %+v", lines[0])
	}
}

// TestWrapEdgeCases covers empty input and words wider than the line.
func TestWrapEdgeCases(t *testing.T) {
	m := FixedMeasurer(10)
	if got := Wrap("   ", 100, m); len(got) != 0 {
		t.Fatalf("blank input gave %d lines", len(got))
	}
	if got := WrapAndJustify("", 100, 0, 0, 10, 2, m); got != nil {
		t.Fatalf("empty justify = %+v", got)
	}
	got := Wrap("tiny enormousword end", 50, m)
	want := []string{"tiny", "enormousword", "end"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Wrap = %q, want %q", got, want)
	}

	lines := WrapAndJustify("enormousword x", 50, 0, 0, 10, 3, m)
	if lines[0].Justified() {
		t.Fatal("a single-word line must not be justified")
	}
}

// TestWrapAndCenter checks vertical centring of multi-line titles.
func TestWrapAndCenter(t *testing.T) {
	m := FixedMeasurer(10)
	lines := WrapAndCenter("one two three", 70, 300, 180, 80, m)
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %+v", len(lines), lines)
	}
	if lines[0].Y != 140 || lines[1].Y != 220 {
		t.Fatalf("line ys = %v, %v; want 140, 220", lines[0].Y, lines[1].Y)
	}
	for _, l := range lines {
		if l.X != 300 || l.Align != AlignCenter {
			t.Fatalf("line %+v not centred on 300", l)
		}
	}

	single := WrapAndCenter("hello", 500, 10, 42, 80, m)
	if len(single) != 1 || single[0].Y != 42 {
		t.Fatalf("single title = %+v", single)
	}
}

// TestWrapTruncate covers the landscape caption policy.
func TestWrapTruncate(t *testing.T) {
	m := FixedMeasurer(10)
	lines := WrapTruncate(fox, 100, 3, m)
	if len(lines) != 3 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.HasSuffix(lines[2], Ellipsis) {
		t.Fatalf("last line %q should end with %q", lines[2], Ellipsis)
	}

	short := WrapTruncate("two words", 1000, 8, m)
	if len(short) != 1 || strings.HasSuffix(short[0], Ellipsis) {
		t.Fatalf("untruncated = %q", short)
	}
}
