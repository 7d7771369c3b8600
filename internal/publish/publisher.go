// Package publish hands finished cards to a destination.
package publish

import (
	"context"
	"time"

	"github.com/abdulachik/axitome/internal/card"
)

// Post is a card ready to go out.
type Post struct {
	Day      string     `json:"day"`
	Platform string     `json:"platform"`
	Caption  string     `json:"caption"`
	Card     *card.Card `json:"card"`
}

// NewPost wraps c for platform.
func NewPost(c *card.Card, platform string) Post {
	return Post{
		Day:      c.Day,
		Platform: platform,
		Caption:  c.Caption,
		Card:     c,
	}
}

// Result identifies a published post.
type Result struct {
	Ref         string
	PublishedAt time.Time
}

// Publisher delivers posts.
type Publisher interface {
	// Name identifies the destination in logs and the ledger.
	Name() string

	// Publish delivers post. Publishing the same day twice must not
	// produce two posts.
	Publish(ctx context.Context, post Post) (*Result, error)

	// Check verifies the destination is usable.
	Check(ctx context.Context) error
}
