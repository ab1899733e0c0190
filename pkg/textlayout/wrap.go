// Package textlayout breaks text into positioned lines against a measured
// width function.
//
// Three policies are provided: centred titles (WrapAndCenter), justified
// captions that never drop words (WrapAndJustify), and a truncating wrapper
// for fixed-height columns (WrapTruncate).
package textlayout

import "strings"

// Measurer reports the advance width of a string in the current font.
type Measurer interface {
	MeasureWidth(s string) float64
}

// MeasureFunc adapts a plain function to Measurer.
type MeasureFunc func(s string) float64

// MeasureWidth calls f.
func (f MeasureFunc) MeasureWidth(s string) float64 { return f(s) }

// FixedMeasurer measures every rune as the same width. Useful where no font
// is loaded.
type FixedMeasurer float64

// MeasureWidth returns the rune count times the fixed width.
func (f FixedMeasurer) MeasureWidth(s string) float64 {
	return float64(len([]rune(s))) * float64(f)
}

// Line is one laid-out line. Align tells the renderer how X is anchored.
type Line struct {
	Text  string
	X, Y  float64
	Align Align

	// Words and WordX are set for justified lines only: each word is drawn
	// left-aligned at its own x.
	Words []string
	WordX []float64
}

// Justified reports whether the line carries per-word positions.
func (l Line) Justified() bool { return len(l.WordX) > 0 }

// Align anchors a line horizontally.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Wrap greedily packs words into lines no wider than maxWidth. A word wider
// than maxWidth stays on a line of its own; it is never split.
func Wrap(text string, maxWidth float64, m Measurer) []string {
	return wrapWords(strings.Fields(text), maxWidth, m)
}

func wrapWords(words []string, maxWidth float64, m Measurer) []string {
	if len(words) == 0 {
		return nil
	}
	if maxWidth <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if m.MeasureWidth(candidate) > maxWidth {
			lines = append(lines, current)
			current = word
		} else {
			current = candidate
		}
	}
	return append(lines, current)
}

// WrapAndCenter wraps a title and centres every line on x. With more than
// one line the block is vertically centred on y.
func WrapAndCenter(text string, maxWidth, x, y, lineHeight float64, m Measurer) []Line {
	wrapped := Wrap(text, maxWidth, m)
	if len(wrapped) == 0 {
		return nil
	}

	startY := y
	if len(wrapped) > 1 {
		startY = y - lineHeight*float64(len(wrapped)-1)/2
	}

	lines := make([]Line, len(wrapped))
	for i, s := range wrapped {
		lines[i] = Line{Text: s, X: x, Y: startY + float64(i)*lineHeight, Align: AlignCenter}
	}
	return lines
}

// DefaultMaxLines is used by WrapAndJustify when maxLines <= 0.
const DefaultMaxLines = 2

// WrapAndJustify wraps a caption into at most maxLines lines centred on x.
// When the greedy pack would need more lines, every word not yet placed is
// appended to the last allowed line, so no words are lost (the last line may
// overflow maxWidth). All lines but the last are fully justified; the last
// line, and any single-word line, is centred.
func WrapAndJustify(text string, maxWidth, x, y, lineHeight float64, maxLines int, m Measurer) []Line {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if maxLines == 1 {
		return []Line{{Text: strings.Join(words, " "), X: x, Y: y, Align: AlignCenter}}
	}

	var packed [][]string
	var current []string
	for i, word := range words {
		candidate := append(current[:len(current):len(current)], word)
		if len(current) > 0 && m.MeasureWidth(strings.Join(candidate, " ")) > maxWidth {
			packed = append(packed, current)
			current = []string{word}
			if len(packed) == maxLines-1 {
				current = append(current, words[i+1:]...)
				break
			}
			continue
		}
		current = candidate
	}
	packed = append(packed, current)

	lines := make([]Line, len(packed))
	for i, lw := range packed {
		ly := y + float64(i)*lineHeight
		last := i == len(packed)-1
		if last || len(lw) < 2 {
			lines[i] = Line{Text: strings.Join(lw, " "), X: x, Y: ly, Align: AlignCenter}
			continue
		}
		lines[i] = justify(lw, maxWidth, x-maxWidth/2, ly, m)
	}
	return lines
}

// justify spreads words across maxWidth starting at left.
func justify(words []string, maxWidth, left, y float64, m Measurer) Line {
	widths := make([]float64, len(words))
	var total float64
	for i, w := range words {
		widths[i] = m.MeasureWidth(w)
		total += widths[i]
	}
	gap := (maxWidth - total) / float64(len(words)-1)

	xs := make([]float64, len(words))
	cursor := left
	for i := range words {
		xs[i] = cursor
		cursor += widths[i] + gap
	}
	return Line{
		Text:  strings.Join(words, " "),
		X:     left,
		Y:     y,
		Align: AlignLeft,
		Words: words,
		WordX: xs,
	}
}

// Ellipsis marks a truncated WrapTruncate result.
const Ellipsis = "..."

// WrapTruncate wraps text and keeps at most maxLines lines, appending
// Ellipsis to the last kept line when anything was cut.
func WrapTruncate(text string, maxWidth float64, maxLines int, m Measurer) []string {
	lines := Wrap(text, maxWidth, m)
	if maxLines <= 0 || len(lines) <= maxLines {
		return lines
	}
	lines = lines[:maxLines]
	lines[maxLines-1] += Ellipsis
	return lines
}
