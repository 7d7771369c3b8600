package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// RecordRunParams describes the card chosen for a day.
type RecordRunParams struct {
	Day             string
	QuoteIndex      int
	Author          string
	Caption         string
	CaptionFallback bool
	Platform        string
}

// RecordRun returns the existing run for the day, or records a new pending
// one. created reports whether a row was inserted.
func (s *Store) RecordRun(ctx context.Context, arg RecordRunParams) (run Run, created bool, err error) {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, false, fmt.Errorf("begin record run: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	q := s.WithTx(tx)

	existing, err := q.GetRunByDay(ctx, arg.Day)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, ErrRunNotFound):
		return Run{}, false, fmt.Errorf("get run %s: %w", arg.Day, err)
	}

	run, err = q.CreateRun(ctx, CreateRunParams{
		ID:              ulid.Make().String(),
		Day:             arg.Day,
		QuoteIndex:      int64(arg.QuoteIndex),
		Author:          arg.Author,
		Caption:         arg.Caption,
		CaptionFallback: arg.CaptionFallback,
		Platform:        arg.Platform,
		CreatedAt:       time.Now(),
	})
	if err != nil {
		return Run{}, false, fmt.Errorf("create run %s: %w", arg.Day, err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, false, fmt.Errorf("commit run %s: %w", arg.Day, err)
	}
	return run, true, nil
}
