// Package scheduler publishes one card per calendar day.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/axitome/internal/card"
	"github.com/abdulachik/axitome/internal/db"
	"github.com/abdulachik/axitome/internal/publish"
)

// Health component names.
const (
	ComponentPublisher = "publisher"
	ComponentDaily     = "daily"
)

// Config wires the scheduler's collaborators.
type Config struct {
	Builder   *card.Builder
	Store     *db.Store
	Publisher publish.Publisher
	Platform  string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Scheduler builds, records and publishes the card for each day.
type Scheduler struct {
	builder   *card.Builder
	store     *db.Store
	publisher publish.Publisher
	platform  string
	now       func() time.Time
	health    *Health
}

// New creates a scheduler.
func New(cfg Config) *Scheduler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		builder:   cfg.Builder,
		store:     cfg.Store,
		publisher: cfg.Publisher,
		platform:  cfg.Platform,
		now:       now,
		health:    NewHealth(),
	}
}

// Health returns the health tracker.
func (s *Scheduler) Health() *Health {
	return s.health
}

// Run publishes today's card if it has not gone out yet, then wakes at
// every local midnight until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	sel := s.builder.Selector()
	slog.Info("starting scheduler",
		"publisher", s.publisher.Name(),
		"platform", s.platform,
		"timezone", sel.Location().String(),
	)

	if err := s.publisher.Check(ctx); err != nil {
		s.health.SetUnhealthy(ComponentPublisher, err)
		slog.Error("publisher check failed", "publisher", s.publisher.Name(), "error", err)
	} else {
		s.health.SetHealthy(ComponentPublisher, "ready")
	}

	s.runCycle(ctx, s.now())

	for {
		next := sel.NextMidnight(s.now())
		wait := next.Sub(s.now())
		slog.Debug("waiting for next day", "next", next, "in", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("scheduler shutting down")
			return ctx.Err()
		case <-timer.C:
			s.runCycle(ctx, s.now())
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context, t time.Time) {
	run, err := s.RunDay(ctx, t)
	if err != nil {
		s.health.SetUnhealthy(ComponentDaily, err)
		slog.Error("daily run failed", "error", err)
		return
	}
	s.health.SetHealthy(ComponentDaily, "published "+run.Day)
}

// RunDay publishes the card for the day containing t. A day that is
// already published is returned unchanged.
func (s *Scheduler) RunDay(ctx context.Context, t time.Time) (*db.Run, error) {
	c, err := s.builder.ForDay(t)
	if err != nil {
		return nil, fmt.Errorf("build card: %w", err)
	}

	run, created, err := s.store.RecordRun(ctx, db.RecordRunParams{
		Day:             c.Day,
		QuoteIndex:      c.Index,
		Author:          c.Quote.Author,
		Caption:         c.Caption,
		CaptionFallback: c.CaptionFallback,
		Platform:        s.platform,
	})
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	if !created && int(run.QuoteIndex) != c.Index {
		slog.Warn("corpus changed since day was recorded",
			"day", c.Day, "recorded_index", run.QuoteIndex, "index", c.Index)
	}
	if run.Published() {
		slog.Debug("day already published", "day", run.Day, "ref", run.PublishedRef.String)
		return &run, nil
	}

	res, err := s.publisher.Publish(ctx, publish.NewPost(c, s.platform))
	if err != nil {
		if markErr := s.store.MarkRunFailed(ctx, db.MarkRunFailedParams{Day: c.Day, Error: err.Error()}); markErr != nil {
			err = errors.Join(err, markErr)
		}
		return nil, fmt.Errorf("publish %s: %w", c.Day, err)
	}

	if err := s.store.MarkRunPublished(ctx, db.MarkRunPublishedParams{
		Day:          c.Day,
		PublishedRef: res.Ref,
		PublishedAt:  res.PublishedAt,
	}); err != nil {
		return nil, fmt.Errorf("mark %s published: %w", c.Day, err)
	}

	published, err := s.store.GetRunByDay(ctx, c.Day)
	if err != nil {
		return nil, fmt.Errorf("reload run %s: %w", c.Day, err)
	}

	slog.Info("published daily card",
		"day", c.Day,
		"index", c.Index,
		"author", c.Quote.Author,
		"ref", res.Ref,
	)
	return &published, nil
}
