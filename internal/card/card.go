// Package card builds the daily quote card: the selected quote, its wrapped
// and placed text, render instructions, and the post caption.
package card

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/axitome/internal/caption"
	"github.com/abdulachik/axitome/internal/layout"
	"github.com/abdulachik/axitome/internal/quote"
	"github.com/abdulachik/axitome/internal/selector"
)

// ErrLayoutOverflow is returned when the composed block does not fit the canvas.
var ErrLayoutOverflow = errors.New("layout does not fit canvas")

// Config holds the card geometry, fonts and caption settings.
type Config struct {
	CanvasWidth  float64
	CanvasHeight float64
	Padding      float64 // horizontal, on each side
	RuleWidth    float64

	TextFont      layout.FontSpec // SizePx comes from Sizes
	MarkFont      layout.FontSpec
	AuthorFont    layout.FontSpec
	WatermarkFont layout.FontSpec

	OpenGlyph  string
	CloseGlyph string
	Watermark  string

	Sizes    layout.SizePolicy
	Layout   layout.Config
	Platform caption.Platform
	Marks    caption.Marks
	LinkBase string
}

// DefaultConfig returns a 1200x675 card captioned for Twitter.
func DefaultConfig() Config {
	return Config{
		CanvasWidth:   1200,
		CanvasHeight:  675,
		Padding:       120,
		RuleWidth:     80,
		TextFont:      layout.FontSpec{Family: "go", Style: "regular"},
		MarkFont:      layout.FontSpec{Family: "go", Style: "bold", SizePx: 64},
		AuthorFont:    layout.FontSpec{Family: "go", Style: "italic", SizePx: 24},
		WatermarkFont: layout.FontSpec{Family: "go", Style: "regular", SizePx: 16},
		OpenGlyph:     "“",
		CloseGlyph:    "”",
		Watermark:     "axitome.com",
		Sizes:         layout.DefaultSizePolicy(),
		Layout:        layout.DefaultConfig(),
		Platform:      caption.Twitter,
		Marks:         caption.DefaultMarks(),
		LinkBase:      "axitome.com",
	}
}

// MaxLineWidth is the canvas width minus padding on both sides.
func (c Config) MaxLineWidth() float64 {
	return c.CanvasWidth - 2*c.Padding
}

// Link returns the permalink for a day.
func (c Config) Link(day string) string {
	return c.LinkBase + "/#" + day
}

// Instruction tells a renderer what to draw and where. X and Y are the
// top-left corner of the element's box.
type Instruction struct {
	Kind    layout.Kind     `json:"kind"`
	Content string          `json:"content,omitempty"`
	X       float64         `json:"x"`
	Y       float64         `json:"y"`
	Width   float64         `json:"width"`
	Height  float64         `json:"height"`
	Font    layout.FontSpec `json:"font"`
}

// Card is a fully built card for one day.
type Card struct {
	Day             string        `json:"day"`
	Index           int           `json:"index"`
	Quote           quote.Quote   `json:"quote"`
	Link            string        `json:"link"`
	FontSize        float64       `json:"font_size"`
	Lines           []layout.Line `json:"lines"`
	Block           layout.Block  `json:"block"`
	Instructions    []Instruction `json:"instructions"`
	Caption         string        `json:"caption"`
	CaptionFallback bool          `json:"caption_fallback"`
}

// Builder turns a day into a Card.
type Builder struct {
	corpus   *quote.Corpus
	selector *selector.Selector
	measurer layout.Measurer
	composer *caption.Composer
	cfg      Config
}

// NewBuilder creates a Builder.
func NewBuilder(corpus *quote.Corpus, sel *selector.Selector, m layout.Measurer, cfg Config) *Builder {
	return &Builder{
		corpus:   corpus,
		selector: sel,
		measurer: m,
		composer: caption.NewComposer(cfg.Marks),
		cfg:      cfg,
	}
}

// Corpus returns the builder's corpus.
func (b *Builder) Corpus() *quote.Corpus {
	return b.corpus
}

// Selector returns the builder's day selector.
func (b *Builder) Selector() *selector.Selector {
	return b.selector
}

// ForDay builds the card for the calendar day containing t.
func (b *Builder) ForDay(t time.Time) (*Card, error) {
	idx, err := b.selector.Select(t, b.corpus.Len())
	if err != nil {
		return nil, err
	}
	return b.ForIndex(idx, t)
}

// ForIndex builds the card for a specific quote, linked to the day containing t.
func (b *Builder) ForIndex(idx int, t time.Time) (*Card, error) {
	q, err := b.corpus.At(idx)
	if err != nil {
		return nil, err
	}

	day := b.selector.Day(t)
	link := b.cfg.Link(day)

	size := b.cfg.Sizes.SizeFor(q.Text)
	textFont := b.cfg.TextFont.WithSize(size)

	lines, err := layout.Wrap(q.Text, b.measurer, b.cfg.MaxLineWidth(), textFont)
	if err != nil {
		return nil, fmt.Errorf("wrap quote %d: %w", idx, err)
	}

	block := layout.Layout(len(lines), size, b.cfg.CanvasHeight, b.cfg.Layout)
	if !block.Fits() {
		return nil, fmt.Errorf("%w: quote %d needs %g of %g px", ErrLayoutOverflow, idx, block.TotalHeight, b.cfg.CanvasHeight)
	}

	instructions, err := b.instructions(q, lines, block, textFont)
	if err != nil {
		return nil, fmt.Errorf("place quote %d: %w", idx, err)
	}

	text, fallback, err := b.caption(q, link)
	if err != nil {
		return nil, fmt.Errorf("caption quote %d: %w", idx, err)
	}

	slog.Debug("built card",
		"day", day,
		"index", idx,
		"lines", len(lines),
		"font_size", size,
		"caption_fallback", fallback,
	)

	return &Card{
		Day:             day,
		Index:           idx,
		Quote:           q,
		Link:            link,
		FontSize:        size,
		Lines:           lines,
		Block:           block,
		Instructions:    instructions,
		Caption:         text,
		CaptionFallback: fallback,
	}, nil
}

// caption composes the post text, falling back to a minimal caption when
// the author and link leave no room for the quote.
func (b *Builder) caption(q quote.Quote, link string) (string, bool, error) {
	text, err := b.cfg.Platform.Compose(b.composer, q, link)
	if err == nil {
		return text, false, nil
	}
	if !errors.Is(err, caption.ErrCaptionTooLong) {
		return "", false, err
	}

	fallback := FallbackCaption(q.Author, link)
	if !b.cfg.Platform.Fits(fallback, link) {
		return "", false, err
	}
	slog.Warn("using fallback caption", "author", q.Author)
	return fallback, true, nil
}

// FallbackCaption is the minimal caption used when a quote cannot fit.
func FallbackCaption(author, link string) string {
	return fmt.Sprintf("By %s\n\n%s", author, link)
}

func (b *Builder) instructions(q quote.Quote, lines []layout.Line, block layout.Block, textFont layout.FontSpec) ([]Instruction, error) {
	out := make([]Instruction, 0, len(block.Elements))

	centered := func(e layout.Element, content string, font layout.FontSpec) error {
		w, err := b.measurer.Measure(content, font)
		if err != nil {
			if errors.Is(err, layout.ErrMeasurement) {
				return err
			}
			return fmt.Errorf("%w: %v", layout.ErrMeasurement, err)
		}
		out = append(out, Instruction{
			Kind:    e.Kind,
			Content: content,
			X:       (b.cfg.CanvasWidth - w) / 2,
			Y:       e.Y,
			Width:   w,
			Height:  e.Height,
			Font:    font,
		})
		return nil
	}

	for _, e := range block.Elements {
		var err error
		switch e.Kind {
		case layout.KindOpenMark:
			err = centered(e, b.cfg.OpenGlyph, b.cfg.MarkFont)
		case layout.KindCloseMark:
			err = centered(e, b.cfg.CloseGlyph, b.cfg.MarkFont)
		case layout.KindAuthor:
			err = centered(e, "— "+q.Author, b.cfg.AuthorFont)
		case layout.KindWatermark:
			err = centered(e, b.cfg.Watermark, b.cfg.WatermarkFont)
		case layout.KindLine:
			l := lines[e.Line]
			out = append(out, Instruction{
				Kind:    e.Kind,
				Content: l.Text,
				X:       (b.cfg.CanvasWidth - l.Width) / 2,
				Y:       e.Y,
				Width:   l.Width,
				Height:  e.Height,
				Font:    textFont,
			})
		case layout.KindRule:
			out = append(out, Instruction{
				Kind:   e.Kind,
				X:      (b.cfg.CanvasWidth - b.cfg.RuleWidth) / 2,
				Y:      e.Y,
				Width:  b.cfg.RuleWidth,
				Height: e.Height,
			})
		}
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}
