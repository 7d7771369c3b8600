package caption

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/axitome/internal/quote"
)

const testLink = "axitome.com"

// spacedText returns n characters with a space after every five letters.
func spacedText(n int) string {
	var b strings.Builder
	for i := 0; b.Len() < n; i++ {
		if i%6 == 5 {
			b.WriteByte(' ')
		} else {
			b.WriteByte(byte('a' + i%26))
		}
	}
	return b.String()[:n]
}

func TestWeightedLength(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		link   string
		weight int
		want   int
	}{
		{"no link", "hello", testLink, 23, 5},
		{"short link charged up", "see axitome.com", testLink, 23, 4 + 23},
		{"long link charged down", "https://example.com/a/very/long/path/indeed", "https://example.com/a/very/long/path/indeed", 23, 23},
		{"two occurrences", "axitome.com axitome.com", testLink, 23, 23 + 1 + 23},
		{"empty link", "hello", "", 23, 5},
		{"runes not bytes", "— é", "", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeightedLength(tt.s, tt.link, tt.weight))
		})
	}
}

func TestCompose_ShortQuoteUntouched(t *testing.T) {
	q := quote.Quote{Text: spacedText(50), Author: "Seneca"}

	result, err := Compose(q, testLink, 280, 23)
	require.NoError(t, err)

	assert.Equal(t, "\""+q.Text+"\"\n— Seneca\n\naxitome.com", result)
	assert.NotContains(t, result, "...")
}

func TestCompose_ExactBudgetUntouched(t *testing.T) {
	// Full caption overhead without ellipsis: 2 marks + 3 separator + 6 author + 2 newlines + 23 link.
	q := quote.Quote{Text: spacedText(280 - 36), Author: "Seneca"}

	result, err := Compose(q, testLink, 280, 23)
	require.NoError(t, err)
	assert.Equal(t, 280, WeightedLength(result, testLink, 23))
	assert.Contains(t, result, q.Text)
}

func TestCompose_LongQuoteTruncated(t *testing.T) {
	text := spacedText(400)
	q := quote.Quote{Text: text, Author: "Seneca"}

	result, err := Compose(q, testLink, 280, 23)
	require.NoError(t, err)

	assert.LessOrEqual(t, WeightedLength(result, testLink, 23), 280)
	suffix := "...\"\n— Seneca\n\naxitome.com"
	require.True(t, strings.HasSuffix(result, suffix), result)

	fragment := strings.TrimSuffix(strings.TrimPrefix(result, "\""), suffix)
	require.True(t, strings.HasPrefix(text, fragment))
	assert.Equal(t, byte(' '), text[len(fragment)], "cut must land on a word boundary")

	available := 280 - 39
	assert.GreaterOrEqual(t, len(fragment)*10, available*7)
	assert.LessOrEqual(t, len(fragment), available)
}

func TestCompose_HardCutWhenSpaceTooFarBack(t *testing.T) {
	text := "short " + strings.Repeat("x", 500)
	q := quote.Quote{Text: text, Author: "Seneca"}

	result, err := Compose(q, testLink, 280, 23)
	require.NoError(t, err)

	fragment := strings.TrimSuffix(strings.TrimPrefix(result, "\""), "...\"\n— Seneca\n\naxitome.com")
	assert.Len(t, fragment, 280-39)
	assert.Equal(t, 280, WeightedLength(result, testLink, 23))
}

func TestCompose_CaptionTooLong(t *testing.T) {
	q := quote.Quote{Text: "Short.", Author: strings.Repeat("Very Long Name ", 30)}

	_, err := Compose(q, testLink, 280, 23)
	assert.ErrorIs(t, err, ErrCaptionTooLong)
}

func TestCompose_LinkInsideQuote(t *testing.T) {
	q := quote.Quote{Text: "axitome.com is where the daily quote lives", Author: "Seneca"}

	// Overhead is 39; the link inside the fragment costs 23, more than its
	// 11 literal characters, so the first cut overshoots.
	result, err := Compose(q, testLink, 50, 23)
	require.NoError(t, err)
	assert.LessOrEqual(t, WeightedLength(result, testLink, 23), 50)
	assert.True(t, strings.HasSuffix(result, "...\"\n— Seneca\n\naxitome.com"), result)
}

func TestCompose_KeepsQuotePunctuation(t *testing.T) {
	q := quote.Quote{Text: "We suffer? " + strings.Repeat("more often in imagination ", 20), Author: "Seneca"}

	result, err := Compose(q, testLink, 52, 23)
	require.NoError(t, err)
	assert.Equal(t, "\"We suffer?...\"\n— Seneca\n\naxitome.com", result)
}

func TestCompose_ZeroRoomLeavesEllipsis(t *testing.T) {
	q := quote.Quote{Text: spacedText(100), Author: "Seneca"}

	result, err := Compose(q, testLink, 39, 23)
	require.NoError(t, err)
	assert.Equal(t, "\"...\"\n— Seneca\n\naxitome.com", result)
}

func TestCompose_BudgetInvariant(t *testing.T) {
	authors := []string{"Seneca", "Marcus Aurelius", "Lao Tzu"}
	links := []struct {
		link   string
		weight int
	}{
		{testLink, 23},
		{"axitome.com/#2026-02-15", 23},
		{"a.co", 23},
		{"https://example.org/a/rather/long/path/for/testing", 23},
	}

	for _, author := range authors {
		for _, l := range links {
			for length := 0; length <= 420; length++ {
				text := spacedText(length)
				if length > 0 && length%7 == 0 {
					// Embed the link so the weighting touches the quote text.
					text = l.link + " " + text
				}
				q := quote.Quote{Text: text, Author: author}

				overhead := WeightedLength(NewComposer(DefaultMarks()).assemble("...", author, l.link), l.link, l.weight)
				budgets := make([]int, 0, 90)
				for budget := overhead; budget <= overhead+60; budget++ {
					budgets = append(budgets, budget)
				}
				for budget := max(overhead, 270); budget <= 290; budget++ {
					budgets = append(budgets, budget)
				}
				for _, budget := range budgets {
					result, err := Compose(q, l.link, budget, l.weight)
					if err != nil || WeightedLength(result, l.link, l.weight) > budget {
						require.NoError(t, err, "author %q link %q length %d budget %d", author, l.link, length, budget)
						require.LessOrEqual(t, WeightedLength(result, l.link, l.weight), budget,
							"author %q link %q length %d budget %d", author, l.link, length, budget)
					}
				}
			}
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		available int
		want      string
	}{
		{"zero", "hello world", 0, ""},
		{"whole text", "hello world", 50, "hello world"},
		{"space past threshold", "hello world again", 13, "hello world"},
		{"space before threshold", "hi worldwideweb", 12, "hi worldwide"},
		{"punctuation kept at word cut", "hello, world", 7, "hello,"},
		{"punctuation kept before space", "hello world! more", 13, "hello world!"},
		{"hard cut keeps full length", "short aaaa.bbbb", 11, "short aaaa."},
		{"runes", "héllo wörld ägain", 13, "héllo wörld"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate([]rune(tt.text), tt.available)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), tt.available)
		})
	}
}

func TestPlatform(t *testing.T) {
	p, err := PlatformByName("Twitter")
	require.NoError(t, err)
	assert.Equal(t, Twitter, p)

	p, err = PlatformByName("bsky")
	require.NoError(t, err)
	assert.Equal(t, Bluesky, p)

	_, err = PlatformByName("myspace")
	assert.Error(t, err)

	assert.Equal(t, 23, Twitter.WeightFor("axitome.com/#2026-02-15"))
	assert.Equal(t, 11, Bluesky.WeightFor(testLink))

	q := quote.Quote{Text: spacedText(500), Author: "Seneca"}
	for _, platform := range []Platform{Twitter, Bluesky} {
		result, err := platform.Compose(NewComposer(DefaultMarks()), q, testLink)
		require.NoError(t, err)
		assert.True(t, platform.Fits(result, testLink))
	}
}
