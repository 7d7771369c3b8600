// Package layout wraps quote text into lines and computes the vertical
// geometry of a quote card. It performs no drawing.
package layout

import (
	"errors"
	"fmt"
)

// ErrMeasurement wraps failures reported by a Measurer.
var ErrMeasurement = errors.New("text measurement failed")

// FontSpec identifies a font face. Family and Style are opaque tokens passed
// through to the Measurer unchanged.
type FontSpec struct {
	Family string  `json:"family" yaml:"family"`
	Style  string  `json:"style" yaml:"style"`
	SizePx float64 `json:"size_px" yaml:"size_px"`
}

// WithSize returns a copy of f at the given pixel size.
func (f FontSpec) WithSize(sizePx float64) FontSpec {
	f.SizePx = sizePx
	return f
}

// Measurer returns the rendered pixel width of text in a font.
// Implementations must be deterministic for fixed inputs.
type Measurer interface {
	Measure(text string, font FontSpec) (float64, error)
}

// MeasureFunc adapts a function to the Measurer interface.
type MeasureFunc func(text string, font FontSpec) (float64, error)

// Measure calls f.
func (f MeasureFunc) Measure(text string, font FontSpec) (float64, error) {
	return f(text, font)
}

func measure(m Measurer, text string, font FontSpec) (float64, error) {
	w, err := m.Measure(text, font)
	if err != nil {
		if errors.Is(err, ErrMeasurement) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrMeasurement, err)
	}
	return w, nil
}
