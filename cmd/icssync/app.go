package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/guilherme-santos/icssync/calendar"
	"github.com/guilherme-santos/icssync/calendar/google"
	"github.com/guilherme-santos/icssync/internal"
	"github.com/guilherme-santos/icssync/internal/config"
	"github.com/guilherme-santos/icssync/internal/ics"
	"github.com/guilherme-santos/icssync/internal/sqlite"
	"github.com/guilherme-santos/icssync/internal/syncer"
)

type app struct {
	cfg *config.Config
	out io.Writer
	log *internal.Logger

	db      *sql.DB
	storage *sqlite.Storage
	google  *google.Client
}

func newApp(cmd *cobra.Command) (*app, error) {
	v := config.New()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	if err := config.BindFlags(v, cmd.InheritedFlags()); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v, configFile, envFile)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(sqlite.DriverName, cfg.Database)
	if err != nil {
		return nil, err
	}
	out := cmd.OutOrStdout()
	return &app{
		cfg:     cfg,
		out:     out,
		log:     internal.NewLogger(out, "", cfg.Verbose),
		db:      db,
		storage: sqlite.NewStorage(db),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func (a *app) googleClient() (*google.Client, error) {
	if a.google != nil {
		return a.google, nil
	}
	credJSON, err := os.ReadFile(a.cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}
	client, err := google.NewClient(credJSON, a.storage, a.log)
	if err != nil {
		return nil, err
	}
	a.google = client
	return client, nil
}

func (a *app) newMux() (internal.Mux, error) {
	googleCal, err := a.googleClient()
	if err != nil {
		return nil, err
	}
	mux := calendar.NewMux()
	mux.Register(google.Platform, googleCal)
	return mux, nil
}

// account resolves the configured account, or the only account stored
// when none is configured.
func (a *app) account(ctx context.Context) (*internal.Account, error) {
	id := a.cfg.Account
	if id != "" {
		if !strings.Contains(id, "/") {
			id = google.Platform + "/" + id
		}
		acc, err := a.storage.Account(ctx, id)
		if errors.Is(err, internal.ErrNotFound) {
			return nil, fmt.Errorf("account %s is not configured, run configure first", id)
		}
		return acc, err
	}

	accs, err := a.storage.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	switch len(accs) {
	case 0:
		return nil, errors.New("no account configured, run configure first")
	case 1:
		return accs[0], nil
	}
	ids := make([]string, len(accs))
	for i, acc := range accs {
		ids[i] = acc.ID()
	}
	return nil, fmt.Errorf("more than one account configured, pick one with --account: %s", strings.Join(ids, ", "))
}

func (a *app) calendar(ctx context.Context) (*internal.Calendar, error) {
	acc, err := a.account(ctx)
	if err != nil {
		return nil, err
	}
	return internal.NewCalendar(*acc, a.cfg.CalendarID), nil
}

func (a *app) syncer() (*syncer.Syncer, error) {
	mux, err := a.newMux()
	if err != nil {
		return nil, err
	}
	return a.newSyncer(mux), nil
}

func (a *app) newSyncer(mux internal.Mux) *syncer.Syncer {
	fetcher := ics.NewFetcher(a.cfg.HTTPTimeout, a.storage, a.log)
	s := syncer.New(a.out, a.cfg.Verbose, mux, fetcher, a.storage)
	s.FutureOnly = a.cfg.FutureOnly
	s.PruneMissing = a.cfg.PruneMissing
	s.DryRun = a.cfg.DryRun
	s.Recurrence = a.cfg.Recurrence
	return s
}
