// Package fontmetrics measures text widths with tdewolff/canvas font faces.
package fontmetrics

import (
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/abdulachik/axitome/internal/layout"
)

// canvas sizes faces in points and reports widths in millimetres. Passing a
// pixel size as points and converting the width back to points yields pixels.
const ptPerMm = 72 / 25.4

// Built-in family names.
const (
	FamilyGo     = "go"
	FamilyGoMono = "gomono"
)

// Measurer implements layout.Measurer over registered font files.
type Measurer struct {
	mu       sync.Mutex
	blobs    map[string][]byte // by family|style
	families map[string]*canvas.FontFamily
	faces    map[string]*canvas.FontFace
}

var _ layout.Measurer = (*Measurer)(nil)

// New returns a Measurer with the built-in Go fonts registered.
func New() *Measurer {
	m := &Measurer{
		blobs:    map[string][]byte{},
		families: map[string]*canvas.FontFamily{},
		faces:    map[string]*canvas.FontFace{},
	}
	m.blobs[blobKey(FamilyGo, canvas.FontRegular)] = goregular.TTF
	m.blobs[blobKey(FamilyGo, canvas.FontBold)] = gobold.TTF
	m.blobs[blobKey(FamilyGo, canvas.FontItalic)] = goitalic.TTF
	m.blobs[blobKey(FamilyGo, canvas.FontBold|canvas.FontItalic)] = gobolditalic.TTF
	m.blobs[blobKey(FamilyGoMono, canvas.FontRegular)] = gomono.TTF
	m.blobs[blobKey(FamilyGoMono, canvas.FontBold)] = gomonobold.TTF
	return m
}

// Register adds a TrueType/OpenType font for family and style. A later
// registration for the same pair replaces the earlier one.
func (m *Measurer) Register(family, style string, data []byte) error {
	if family == "" {
		return fmt.Errorf("register font: family is required")
	}
	if len(data) == 0 {
		return fmt.Errorf("register font %s: no font data", family)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := blobKey(family, parseFontStyle(style))
	m.blobs[key] = data
	delete(m.families, key)
	for k := range m.faces {
		if strings.HasPrefix(k, key+"|") {
			delete(m.faces, k)
		}
	}
	return nil
}

// Measure returns the width of text in pixels.
func (m *Measurer) Measure(text string, font layout.FontSpec) (float64, error) {
	if font.SizePx <= 0 {
		return 0, fmt.Errorf("%w: font size must be positive, got %g", layout.ErrMeasurement, font.SizePx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	face, err := m.face(font)
	if err != nil {
		return 0, err
	}
	return face.TextWidth(text) * ptPerMm, nil
}

// face must be called with m.mu held.
func (m *Measurer) face(font layout.FontSpec) (*canvas.FontFace, error) {
	style := parseFontStyle(font.Style)
	key := blobKey(font.Family, style)
	faceKey := fmt.Sprintf("%s|%g", key, font.SizePx)

	if face, ok := m.faces[faceKey]; ok {
		return face, nil
	}

	family, ok := m.families[key]
	if !ok {
		data, ok := m.blobs[key]
		if !ok {
			return nil, fmt.Errorf("%w: unknown font %s (%s)", layout.ErrMeasurement, font.Family, font.Style)
		}
		family = canvas.NewFontFamily(font.Family)
		if err := family.LoadFont(data, 0, style); err != nil {
			return nil, fmt.Errorf("%w: load font %s: %v", layout.ErrMeasurement, font.Family, err)
		}
		m.families[key] = family
	}

	face := family.Face(font.SizePx, color.Black, style, canvas.FontNormal)
	m.faces[faceKey] = face
	return face, nil
}

func blobKey(family string, style canvas.FontStyle) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(family), style)
}

func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	result := canvas.FontRegular
	if strings.Contains(s, "bold") {
		result = canvas.FontBold
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}
