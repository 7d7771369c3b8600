package layout

import (
	"strings"
	"unicode/utf8"
)

// Line is one wrapped line of quote text and its measured width.
type Line struct {
	Text  string  `json:"text"`
	Width float64 `json:"width"`
}

// Overflows reports whether the line is wider than maxWidth. Only a single
// word that is wider than maxWidth on its own can overflow.
func (l Line) Overflows(maxWidth float64) bool {
	return l.Width > maxWidth
}

// Words splits text on spaces, dropping empty fields. Tabs and newlines are
// not separators.
func Words(text string) []string {
	parts := strings.Split(text, " ")
	words := parts[:0]
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}

// Wrap greedily packs the words of text into lines no wider than maxWidth.
// A word that alone exceeds maxWidth is never split and becomes its own line.
func Wrap(text string, m Measurer, maxWidth float64, font FontSpec) ([]Line, error) {
	var (
		lines    []Line
		buf      string
		bufWidth float64
	)

	for _, word := range Words(text) {
		candidate := word
		if buf != "" {
			candidate = buf + " " + word
		}

		w, err := measure(m, candidate, font)
		if err != nil {
			return nil, err
		}

		if w > maxWidth && buf != "" {
			lines = append(lines, Line{Text: buf, Width: bufWidth})
			buf = word
			if bufWidth, err = measure(m, word, font); err != nil {
				return nil, err
			}
			continue
		}

		buf, bufWidth = candidate, w
	}

	if buf != "" {
		lines = append(lines, Line{Text: buf, Width: bufWidth})
	}

	return lines, nil
}

// SizePolicy picks one of three fixed font sizes from the text length in
// characters. The layout constants are tuned to these sizes, so the tiers
// are discrete on purpose.
type SizePolicy struct {
	LongThreshold   int     `yaml:"long_threshold"`
	MediumThreshold int     `yaml:"medium_threshold"`
	SmallPx         float64 `yaml:"small_px"`
	MediumPx        float64 `yaml:"medium_px"`
	LargePx         float64 `yaml:"large_px"`
}

// DefaultSizePolicy returns the tiers used for a 1200x675 card.
func DefaultSizePolicy() SizePolicy {
	return SizePolicy{
		LongThreshold:   300,
		MediumThreshold: 150,
		SmallPx:         26,
		MediumPx:        32,
		LargePx:         40,
	}
}

// SizeFor returns the font size for text.
func (p SizePolicy) SizeFor(text string) float64 {
	n := utf8.RuneCountInString(text)
	switch {
	case n > p.LongThreshold:
		return p.SmallPx
	case n > p.MediumThreshold:
		return p.MediumPx
	default:
		return p.LargePx
	}
}
