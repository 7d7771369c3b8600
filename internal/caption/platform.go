package caption

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abdulachik/axitome/internal/quote"
)

// Platform describes a target's text budget and how it charges links.
type Platform struct {
	Name   string
	Budget int
	// URLWeight is the fixed cost of a link. Zero means links are charged
	// their literal length.
	URLWeight int
}

var (
	// Twitter shortens every link to a 23 character t.co URL.
	Twitter = Platform{Name: "twitter", Budget: 280, URLWeight: 23}

	// Bluesky counts links as written.
	Bluesky = Platform{Name: "bluesky", Budget: 300}
)

// PlatformByName returns the preset for name.
func PlatformByName(name string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "twitter", "x":
		return Twitter, nil
	case "bluesky", "bsky":
		return Bluesky, nil
	default:
		return Platform{}, fmt.Errorf("unknown caption platform %q (must be 'twitter' or 'bluesky')", name)
	}
}

// WeightFor returns the cost charged for link on this platform.
func (p Platform) WeightFor(link string) int {
	if p.URLWeight > 0 {
		return p.URLWeight
	}
	return utf8.RuneCountInString(link)
}

// Compose builds a caption for q within the platform budget.
func (p Platform) Compose(c *Composer, q quote.Quote, link string) (string, error) {
	return c.Compose(q, link, p.Budget, p.WeightFor(link))
}

// Fits reports whether s is within the platform budget.
func (p Platform) Fits(s, link string) bool {
	return WeightedLength(s, link, p.WeightFor(link)) <= p.Budget
}
