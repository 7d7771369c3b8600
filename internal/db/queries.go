package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned when no run exists for a day.
var ErrRunNotFound = errors.New("run not found")

// Run statuses.
const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the ledger statements.
type Queries struct {
	db DBTX
}

// New returns Queries over db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Run is one day's ledger entry.
type Run struct {
	ID              string
	Day             string
	QuoteIndex      int64
	Author          string
	Caption         string
	CaptionFallback bool
	Platform        string
	Status          string
	PublishedRef    sql.NullString
	Error           sql.NullString
	CreatedAt       time.Time
	PublishedAt     sql.NullTime
}

// Published reports whether the run has been handed to the publisher.
func (r Run) Published() bool {
	return r.Status == StatusPublished
}

const runColumns = `id, day, quote_index, author, caption, caption_fallback, platform, status, published_ref, error, created_at, published_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r           Run
		fallback    int64
		createdAt   string
		publishedAt sql.NullString
	)
	if err := s.Scan(&r.ID, &r.Day, &r.QuoteIndex, &r.Author, &r.Caption, &fallback,
		&r.Platform, &r.Status, &r.PublishedRef, &r.Error, &createdAt, &publishedAt); err != nil {
		return Run{}, err
	}

	r.CaptionFallback = fallback != 0

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at: %w", err)
	}
	r.CreatedAt = t

	if publishedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, publishedAt.String)
		if err != nil {
			return Run{}, fmt.Errorf("parse published_at: %w", err)
		}
		r.PublishedAt = sql.NullTime{Time: t, Valid: true}
	}

	return r, nil
}

// CreateRunParams holds the fields of a new run.
type CreateRunParams struct {
	ID              string
	Day             string
	QuoteIndex      int64
	Author          string
	Caption         string
	CaptionFallback bool
	Platform        string
	CreatedAt       time.Time
}

const createRun = `INSERT INTO runs (id, day, quote_index, author, caption, caption_fallback, platform, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, 'pending', ?)
RETURNING ` + runColumns

// CreateRun inserts a pending run.
func (q *Queries) CreateRun(ctx context.Context, arg CreateRunParams) (Run, error) {
	fallback := 0
	if arg.CaptionFallback {
		fallback = 1
	}
	row := q.db.QueryRowContext(ctx, createRun,
		arg.ID,
		arg.Day,
		arg.QuoteIndex,
		arg.Author,
		arg.Caption,
		fallback,
		arg.Platform,
		arg.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return scanRun(row)
}

const getRunByDay = `SELECT ` + runColumns + ` FROM runs WHERE day = ?`

// GetRunByDay returns the run for day or ErrRunNotFound.
func (q *Queries) GetRunByDay(ctx context.Context, day string) (Run, error) {
	r, err := scanRun(q.db.QueryRowContext(ctx, getRunByDay, day))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return r, err
}

// MarkRunPublishedParams identifies a published run.
type MarkRunPublishedParams struct {
	Day          string
	PublishedRef string
	PublishedAt  time.Time
}

const markRunPublished = `UPDATE runs
SET status = 'published', published_ref = ?, published_at = ?, error = NULL
WHERE day = ?`

// MarkRunPublished records a successful hand-off.
func (q *Queries) MarkRunPublished(ctx context.Context, arg MarkRunPublishedParams) error {
	res, err := q.db.ExecContext(ctx, markRunPublished,
		sql.NullString{String: arg.PublishedRef, Valid: arg.PublishedRef != ""},
		arg.PublishedAt.UTC().Format(time.RFC3339Nano),
		arg.Day,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// MarkRunFailedParams identifies a failed run.
type MarkRunFailedParams struct {
	Day   string
	Error string
}

const markRunFailed = `UPDATE runs SET status = 'failed', error = ? WHERE day = ? AND status != 'published'`

// MarkRunFailed records a failed hand-off. Published runs are left alone.
func (q *Queries) MarkRunFailed(ctx context.Context, arg MarkRunFailedParams) error {
	_, err := q.db.ExecContext(ctx, markRunFailed, arg.Error, arg.Day)
	return err
}

const listRuns = `SELECT ` + runColumns + ` FROM runs ORDER BY day DESC LIMIT ?`

// ListRuns returns the most recent runs, newest day first.
func (q *Queries) ListRuns(ctx context.Context, limit int64) ([]Run, error) {
	rows, err := q.db.QueryContext(ctx, listRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

const countRuns = `SELECT COUNT(*) FROM runs`

// CountRuns returns the number of recorded runs.
func (q *Queries) CountRuns(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countRuns).Scan(&n)
	return n, err
}

const countRunsByStatus = `SELECT COUNT(*) FROM runs WHERE status = ?`

// CountRunsByStatus returns the number of runs with status.
func (q *Queries) CountRunsByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countRunsByStatus, status).Scan(&n)
	return n, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}
