package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/guilherme-santos/icssync/internal"
	"github.com/guilherme-santos/icssync/internal/ics"
)

const DriverName = "sqlite3"

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sql.DB) *Storage {
	s := &Storage{
		db: sqlx.NewDb(db, DriverName),
	}
	err := s.RunMigrations()
	if err != nil {
		panic(fmt.Sprintf("sqlite: running migrations: %v", err))
	}
	return s
}

func (s Storage) AddAccount(ctx context.Context, account *internal.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, auth) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET auth=?;
	`, account.ID(), account.Auth, account.Auth)
	return err
}

// Account returns internal.ErrNotFound when id was never configured.
func (s Storage) Account(ctx context.Context, id string) (*internal.Account, error) {
	var acc Account
	err := s.db.GetContext(ctx, &acc, `
		SELECT id, auth FROM accounts WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, internal.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return acc.Convert(), nil
}

func (s Storage) Accounts(ctx context.Context) ([]*internal.Account, error) {
	var accs []Account
	err := s.db.SelectContext(ctx, &accs, `
		SELECT id, auth FROM accounts ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	res := make([]*internal.Account, len(accs))
	for i, a := range accs {
		res[i] = a.Convert()
	}
	return res, nil
}

func (s Storage) FeedCache(ctx context.Context, url string) (*ics.CachedFeed, error) {
	var fc FeedCache
	err := s.db.GetContext(ctx, &fc, `
		SELECT url, etag, last_modified, body, updated_at
		FROM feed_cache
		WHERE url = ?
	`, url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, internal.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fc.Convert(), nil
}

func (s Storage) SaveFeedCache(ctx context.Context, feed *ics.CachedFeed) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feed_cache (url, etag, last_modified, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE
			SET etag = excluded.etag,
				last_modified = excluded.last_modified,
				body = excluded.body,
				updated_at = excluded.updated_at;
	`, feed.URL, feed.ETag, feed.LastModified, feed.Body, time.Now().UTC())
	return err
}

func (s Storage) SaveRun(ctx context.Context, run *internal.Run) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO runs (id, calendar_id, feed_url, started_at, finished_at, dry_run,
			created, updated, deleted, skipped, error)
		VALUES (:id, :calendar_id, :feed_url, :started_at, :finished_at, :dry_run,
			:created, :updated, :deleted, :skipped, :error)
	`, newRun(run))
	return err
}

// Runs returns the latest runs of calID, newest first. An empty calID
// returns runs of every calendar.
func (s Storage) Runs(ctx context.Context, calID string, limit int) ([]*internal.Run, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT * FROM runs`
	var args []any
	if calID != "" {
		query += ` WHERE calendar_id = ?`
		args = append(args, calID)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	var runs []Run
	if err := s.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, err
	}
	res := make([]*internal.Run, len(runs))
	for i, r := range runs {
		res[i] = r.Convert()
	}
	return res, nil
}
