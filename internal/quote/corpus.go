// Package quote holds the daily quote corpus.
package quote

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abdulachik/axitome/internal/selector"
)

// ErrEmptyCorpus is returned when a corpus file holds no quotes. It matches
// selector.ErrInvalidCorpus under errors.Is.
var ErrEmptyCorpus = fmt.Errorf("%w: corpus is empty", selector.ErrInvalidCorpus)

// Quote is a single corpus record. It is never mutated after load.
type Quote struct {
	Text   string   `json:"text" yaml:"text"`
	Author string   `json:"author" yaml:"author"`
	Tags   []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// record accepts both the current field names and the short q/a keys
// used by older corpus files.
type record struct {
	Text   string   `json:"text" yaml:"text"`
	Q      string   `json:"q" yaml:"q"`
	Author string   `json:"author" yaml:"author"`
	A      string   `json:"a" yaml:"a"`
	Tags   []string `json:"tags" yaml:"tags"`
}

func (r record) toQuote() Quote {
	q := Quote{Text: r.Text, Author: r.Author}
	if q.Text == "" {
		q.Text = r.Q
	}
	if q.Author == "" {
		q.Author = r.A
	}
	if len(r.Tags) > 0 {
		q.Tags = append([]string(nil), r.Tags...)
	}
	return q
}

// Corpus is an ordered, non-empty, read-only sequence of quotes.
type Corpus struct {
	quotes []Quote
}

// NewCorpus validates quotes and returns a corpus over a private copy.
func NewCorpus(quotes []Quote) (*Corpus, error) {
	if len(quotes) == 0 {
		return nil, ErrEmptyCorpus
	}

	owned := make([]Quote, len(quotes))
	for i, q := range quotes {
		q.Text = strings.TrimSpace(q.Text)
		q.Author = strings.TrimSpace(q.Author)
		if q.Text == "" {
			return nil, fmt.Errorf("quote %d: text is required", i)
		}
		if q.Author == "" {
			return nil, fmt.Errorf("quote %d: author is required", i)
		}
		if len(q.Tags) > 0 {
			q.Tags = append([]string(nil), q.Tags...)
		}
		owned[i] = q
	}

	return &Corpus{quotes: owned}, nil
}

// Load reads a corpus from a .json, .yaml or .yml file.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON decodes a JSON array of quote records.
func ParseJSON(data []byte) (*Corpus, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse corpus json: %w", err)
	}
	return fromRecords(records)
}

// ParseYAML decodes a YAML sequence of quote records.
func ParseYAML(data []byte) (*Corpus, error) {
	var records []record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse corpus yaml: %w", err)
	}
	return fromRecords(records)
}

func fromRecords(records []record) (*Corpus, error) {
	quotes := make([]Quote, len(records))
	for i, r := range records {
		quotes[i] = r.toQuote()
	}
	return NewCorpus(quotes)
}

// Len returns the number of quotes.
func (c *Corpus) Len() int {
	return len(c.quotes)
}

// At returns the quote at index i.
func (c *Corpus) At(i int) (Quote, error) {
	if i < 0 || i >= len(c.quotes) {
		return Quote{}, fmt.Errorf("quote index %d out of range [0, %d)", i, len(c.quotes))
	}
	q := c.quotes[i]
	q.Tags = append([]string(nil), q.Tags...)
	return q, nil
}

// Entry pairs a quote with its corpus index.
type Entry struct {
	Index int   `json:"index"`
	Quote Quote `json:"quote"`
}

// ByTag returns the entries carrying tag, compared case-insensitively.
// An empty tag returns every entry.
func (c *Corpus) ByTag(tag string) []Entry {
	want := normalizeTag(tag)
	var entries []Entry
	for i, q := range c.quotes {
		if want == "" || hasTag(q, want) {
			entries = append(entries, Entry{Index: i, Quote: q})
		}
	}
	return entries
}

// Tags returns the distinct normalized tags in sorted order.
func (c *Corpus) Tags() []string {
	seen := make(map[string]bool)
	var tags []string
	for _, q := range c.quotes {
		for _, t := range q.Tags {
			n := normalizeTag(t)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			tags = append(tags, n)
		}
	}
	sort.Strings(tags)
	return tags
}

func hasTag(q Quote, normalized string) bool {
	for _, t := range q.Tags {
		if normalizeTag(t) == normalized {
			return true
		}
	}
	return false
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
