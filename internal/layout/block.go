package layout

import (
	"fmt"
	"math"
)

// Kind names a visual element of the quote card.
type Kind string

const (
	KindOpenMark  Kind = "open_mark"
	KindLine      Kind = "line"
	KindCloseMark Kind = "close_mark"
	KindRule      Kind = "rule"
	KindAuthor    Kind = "author"
	KindWatermark Kind = "watermark"
)

// Spacing is an element's fixed height and the gap below it.
type Spacing struct {
	Height float64 `yaml:"height"`
	Gap    float64 `yaml:"gap"`
}

// Watermark is pinned to the canvas bottom, outside the centered flow.
type Watermark struct {
	Height       float64 `yaml:"height"`
	BottomOffset float64 `yaml:"bottom_offset"`
}

// Config holds the tunable vertical constants of the card.
type Config struct {
	OpenMark             Spacing   `yaml:"open_mark"`
	TextGap              float64   `yaml:"text_gap"`
	CloseMark            Spacing   `yaml:"close_mark"`
	Rule                 Spacing   `yaml:"rule"`
	AuthorHeight         float64   `yaml:"author_height"`
	Watermark            Watermark `yaml:"watermark"`
	LineHeightMultiplier float64   `yaml:"line_height_multiplier"`
}

// DefaultConfig returns constants tuned for a 675px tall card.
func DefaultConfig() Config {
	return Config{
		OpenMark:             Spacing{Height: 48, Gap: 8},
		TextGap:              8,
		CloseMark:            Spacing{Height: 48, Gap: 16},
		Rule:                 Spacing{Height: 2, Gap: 16},
		AuthorHeight:         28,
		Watermark:            Watermark{Height: 18, BottomOffset: 24},
		LineHeightMultiplier: 1.7,
	}
}

// Validate rejects negative sizes and a non-positive multiplier.
func (c Config) Validate() error {
	if c.LineHeightMultiplier <= 0 {
		return fmt.Errorf("line height multiplier must be positive, got %g", c.LineHeightMultiplier)
	}
	for name, v := range map[string]float64{
		"open_mark.height":        c.OpenMark.Height,
		"open_mark.gap":           c.OpenMark.Gap,
		"text_gap":                c.TextGap,
		"close_mark.height":       c.CloseMark.Height,
		"close_mark.gap":          c.CloseMark.Gap,
		"rule.height":             c.Rule.Height,
		"rule.gap":                c.Rule.Gap,
		"author_height":           c.AuthorHeight,
		"watermark.height":        c.Watermark.Height,
		"watermark.bottom_offset": c.Watermark.BottomOffset,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %g", name, v)
		}
	}
	return nil
}

// LineHeight returns round(fontSize * multiplier).
func (c Config) LineHeight(fontSize float64) float64 {
	return math.Round(fontSize * c.LineHeightMultiplier)
}

// Element is a placed element. Line is the wrapped line index for KindLine.
type Element struct {
	Kind   Kind    `json:"kind"`
	Line   int     `json:"line,omitempty"`
	Y      float64 `json:"y"`
	Height float64 `json:"height"`
}

// Bottom returns the element's lower edge.
func (e Element) Bottom() float64 {
	return e.Y + e.Height
}

// Block is the vertical geometry of a card.
type Block struct {
	CanvasHeight float64   `json:"canvas_height"`
	Top          float64   `json:"top"`
	TotalHeight  float64   `json:"total_height"`
	LineHeight   float64   `json:"line_height"`
	Elements     []Element `json:"elements"`
}

// Fits reports whether the centered flow lies inside the canvas and ends
// above the pinned watermark.
func (b Block) Fits() bool {
	if b.Top < 0 || b.Top+b.TotalHeight > b.CanvasHeight {
		return false
	}
	wm, ok := b.Find(KindWatermark)
	if !ok {
		return true
	}
	return b.Top+b.TotalHeight <= wm.Y
}

// Find returns the first element of kind k.
func (b Block) Find(k Kind) (Element, bool) {
	for _, e := range b.Elements {
		if e.Kind == k {
			return e, true
		}
	}
	return Element{}, false
}

// Lines returns the placed text lines in order.
func (b Block) Lines() []Element {
	var lines []Element
	for _, e := range b.Elements {
		if e.Kind == KindLine {
			lines = append(lines, e)
		}
	}
	return lines
}

// TotalHeight returns the height of the centered flow for lineCount lines.
func (c Config) TotalHeight(lineCount int, fontSize float64) float64 {
	return c.OpenMark.Height + c.OpenMark.Gap +
		float64(lineCount)*c.LineHeight(fontSize) + c.TextGap +
		c.CloseMark.Height + c.CloseMark.Gap +
		c.Rule.Height + c.Rule.Gap +
		c.AuthorHeight
}

// Layout places the opening mark, lineCount text lines, closing mark, rule
// and author as one block centered in canvasHeight, each element starting at
// the previous element's bottom plus its gap. The watermark is pinned at
// Watermark.BottomOffset above the canvas bottom.
func Layout(lineCount int, fontSize, canvasHeight float64, cfg Config) Block {
	if lineCount < 0 {
		lineCount = 0
	}

	lh := cfg.LineHeight(fontSize)
	total := cfg.TotalHeight(lineCount, fontSize)
	top := math.Round((canvasHeight - total) / 2)

	elements := make([]Element, 0, lineCount+5)
	y := top

	place := func(k Kind, line int, height, gap float64) {
		elements = append(elements, Element{Kind: k, Line: line, Y: y, Height: height})
		y += height + gap
	}

	place(KindOpenMark, 0, cfg.OpenMark.Height, cfg.OpenMark.Gap)
	for i := 0; i < lineCount; i++ {
		gap := 0.0
		if i == lineCount-1 {
			gap = cfg.TextGap
		}
		place(KindLine, i, lh, gap)
	}
	if lineCount == 0 {
		y += cfg.TextGap
	}
	place(KindCloseMark, 0, cfg.CloseMark.Height, cfg.CloseMark.Gap)
	place(KindRule, 0, cfg.Rule.Height, cfg.Rule.Gap)
	place(KindAuthor, 0, cfg.AuthorHeight, 0)

	elements = append(elements, Element{
		Kind:   KindWatermark,
		Y:      canvasHeight - cfg.Watermark.BottomOffset - cfg.Watermark.Height,
		Height: cfg.Watermark.Height,
	})

	return Block{
		CanvasHeight: canvasHeight,
		Top:          top,
		TotalHeight:  total,
		LineHeight:   lh,
		Elements:     elements,
	}
}
