package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
)

// Outbox writes each post as a JSON file named after its day, for an
// external renderer and poster to pick up.
type Outbox struct {
	dir string
	now func() time.Time
}

// NewOutbox returns an Outbox rooted at dir.
func NewOutbox(dir string) *Outbox {
	return &Outbox{dir: dir, now: time.Now}
}

// Name implements Publisher.
func (o *Outbox) Name() string {
	return "outbox"
}

// Dir returns the outbox directory.
func (o *Outbox) Dir() string {
	return o.dir
}

// envelope is the on-disk form of a post.
type envelope struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Post
}

// Path returns the file a post for day is written to.
func (o *Outbox) Path(day string) string {
	return filepath.Join(o.dir, day+".json")
}

// Publish implements Publisher. An existing file for the day is left
// untouched and reported as the result.
func (o *Outbox) Publish(ctx context.Context, post Post) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if post.Day == "" {
		return nil, errors.New("post has no day")
	}

	path := o.Path(post.Day)
	if info, err := os.Stat(path); err == nil {
		slog.Info("outbox entry already exists", "day", post.Day, "path", path)
		return &Result{Ref: path, PublishedAt: info.ModTime()}, nil
	}

	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create outbox: %w", err)
	}

	now := o.now().UTC()
	data, err := json.MarshalIndent(envelope{
		ID:        ulid.Make().String(),
		CreatedAt: now,
		Post:      post,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode post %s: %w", post.Day, err)
	}

	// Write then rename so readers never see a partial file.
	tmp, err := os.CreateTemp(o.dir, "."+post.Day+"-*.json")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write post %s: %w", post.Day, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close post %s: %w", post.Day, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("move post %s: %w", post.Day, err)
	}

	slog.Info("post written to outbox", "day", post.Day, "path", path)
	return &Result{Ref: path, PublishedAt: now}, nil
}

// Check implements Publisher by making sure the directory is writable.
func (o *Outbox) Check(ctx context.Context) error {
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return fmt.Errorf("create outbox: %w", err)
	}
	f, err := os.CreateTemp(o.dir, ".check-*")
	if err != nil {
		return fmt.Errorf("outbox not writable: %w", err)
	}
	f.Close()
	return os.Remove(f.Name())
}

// Read loads the post written for day.
func (o *Outbox) Read(day string) (Post, error) {
	data, err := os.ReadFile(o.Path(day))
	if err != nil {
		return Post{}, fmt.Errorf("read outbox entry: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Post{}, fmt.Errorf("decode outbox entry: %w", err)
	}
	return env.Post, nil
}
