// Package caption composes post captions that fit a platform's weighted
// length budget.
package caption

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abdulachik/axitome/internal/quote"
)

// ErrCaptionTooLong is returned when the marks, author and link alone exceed
// the budget, leaving no room for any quote text.
var ErrCaptionTooLong = errors.New("caption too long: author and link exceed budget")

// Marks are the fixed pieces wrapped around the quote text.
type Marks struct {
	Open      string
	Close     string
	Separator string // between the closing mark and the author
	Ellipsis  string
	LinkBreak string // between the author and the link
}

// DefaultMarks formats captions as:
//
//	"Quote text"
//	— Author
//
//	link
func DefaultMarks() Marks {
	return Marks{
		Open:      "\"",
		Close:     "\"",
		Separator: "\n— ",
		Ellipsis:  "...",
		LinkBreak: "\n\n",
	}
}

// WeightedLength returns the character length of s with every occurrence of
// link charged urlWeight characters regardless of its literal length.
func WeightedLength(s, link string, urlWeight int) int {
	n := utf8.RuneCountInString(s)
	if link == "" {
		return n
	}
	count := strings.Count(s, link)
	return n - count*utf8.RuneCountInString(link) + count*urlWeight
}

// Composer builds captions with a fixed set of marks.
type Composer struct {
	marks Marks
}

// NewComposer returns a Composer using marks.
func NewComposer(marks Marks) *Composer {
	return &Composer{marks: marks}
}

// Compose uses the default marks.
func Compose(q quote.Quote, link string, budget, urlWeight int) (string, error) {
	return NewComposer(DefaultMarks()).Compose(q, link, budget, urlWeight)
}

// Compose returns the full caption when it fits the budget. Otherwise the
// quote text is cut to fit, at the last space when that space lies at or
// beyond 70% of the room available, and an ellipsis is appended. The result's
// weighted length never exceeds budget.
func (c *Composer) Compose(q quote.Quote, link string, budget, urlWeight int) (string, error) {
	full := c.assemble(q.Text, q.Author, link)
	if WeightedLength(full, link, urlWeight) <= budget {
		return full, nil
	}

	overhead := WeightedLength(c.assemble(c.marks.Ellipsis, q.Author, link), link, urlWeight)
	available := budget - overhead
	if available < 0 {
		return "", fmt.Errorf("%w: overhead %d, budget %d", ErrCaptionTooLong, overhead, budget)
	}

	text := []rune(q.Text)
	for {
		fragment := Truncate(text, available)
		result := c.assemble(fragment+c.marks.Ellipsis, q.Author, link)

		excess := WeightedLength(result, link, urlWeight) - budget
		if excess <= 0 {
			return result, nil
		}
		// Only reachable when the fragment contains the link and is charged
		// more than its literal length. An empty fragment weighs exactly
		// overhead, so the loop ends there at the latest.
		available = max(available-excess, 0)
	}
}

func (c *Composer) assemble(text, author, link string) string {
	var b strings.Builder
	b.WriteString(c.marks.Open)
	b.WriteString(text)
	b.WriteString(c.marks.Close)
	b.WriteString(c.marks.Separator)
	b.WriteString(author)
	b.WriteString(c.marks.LinkBreak)
	b.WriteString(link)
	return b.String()
}

// Truncate returns at most available runes of text. When the last space in
// that prefix sits at or beyond 70% of available the cut moves back to it, so
// no word is split; otherwise the hard cut stands. Spaces left at the cut
// are trimmed; the text's own punctuation is kept.
func Truncate(text []rune, available int) string {
	if available <= 0 {
		return ""
	}
	if available > len(text) {
		available = len(text)
	}

	candidate := text[:available]
	if available < len(text) {
		lastSpace := -1
		for i := len(candidate) - 1; i >= 0; i-- {
			if candidate[i] == ' ' {
				lastSpace = i
				break
			}
		}
		if lastSpace >= 0 && lastSpace*10 >= available*7 {
			candidate = candidate[:lastSpace]
		}
	}

	return strings.TrimRight(string(candidate), " ")
}
