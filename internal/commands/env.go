package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/faheemho18/monefy-pwa-clone/internal/activity"
	"github.com/faheemho18/monefy-pwa-clone/internal/backend"
	"github.com/faheemho18/monefy-pwa-clone/internal/backup"
	"github.com/faheemho18/monefy-pwa-clone/internal/config"
	"github.com/faheemho18/monefy-pwa-clone/internal/gitops"
	"github.com/faheemho18/monefy-pwa-clone/internal/ledger"
	"github.com/faheemho18/monefy-pwa-clone/internal/logger"
	"github.com/faheemho18/monefy-pwa-clone/internal/store"
)

// env carries what every command needs: the resolved data directory, the
// loaded config, the logger, and (once opened) the store and services.
type env struct {
	dir      string
	logLevel string
	now      func() time.Time

	dataDir string
	cfg     *config.Config
	log     zerolog.Logger

	backend *backend.Result
	store   *store.Store
	ledger  *ledger.Service
	backups *backup.Manager
}

func newEnv() *env {
	return &env{now: time.Now, log: zerolog.Nop()}
}

// load resolves the data directory, reads .env and monefy.yaml, applies
// MONEFY_* overrides, and builds the logger.
func (e *env) load(cmd *cobra.Command) error {
	abs, err := filepath.Abs(e.dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	e.dataDir = abs

	if err := godotenv.Load(filepath.Join(abs, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.LoadOrDefault(filepath.Join(abs, config.FileName))
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if e.logLevel != "" {
		cfg.Log.Level = e.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	e.cfg = cfg

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Out: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	e.log = log.With().Str("dir", abs).Logger()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx, e.log))
	return nil
}

// open connects the configured backend and builds the services on top.
func (e *env) open() error {
	res, err := backend.Open(e.dataDir, e.cfg.Storage, e.log)
	if err != nil {
		return err
	}
	e.backend = res
	e.store = store.New(res.Store, e.log)
	e.ledger = ledger.NewService(e.store,
		ledger.WithClock(e.now),
		ledger.WithOwner(e.cfg.Household.ID, e.cfg.Household.UserID),
	)
	e.backups = backup.NewManager(e.store, backup.WithClock(e.now), backup.WithLogger(e.log))
	return nil
}

func (e *env) close() {
	if e.backend == nil {
		return
	}
	if err := e.backend.Close(); err != nil {
		e.log.Warn().Err(err).Msg("closing storage backend")
	}
	e.backend = nil
}

// withStore wraps a RunE so the store is open while it runs.
func (e *env) withStore(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := e.open(); err != nil {
			return err
		}
		defer e.close()
		return fn(cmd, args)
	}
}

// record appends to the activity log. A failure is logged, not returned: the
// change itself already succeeded.
func (e *env) record(entries ...activity.Entry) {
	for i := range entries {
		if entries[i].Timestamp.IsZero() {
			entries[i].Timestamp = e.now()
		}
	}
	if err := activity.Append(e.dataDir, entries...); err != nil {
		e.log.Warn().Err(err).Msg("writing activity log")
	}
}

func (e *env) fileSink() *backup.FileSink {
	return &backup.FileSink{
		Dir:    config.Resolve(e.dataDir, e.cfg.Backup.Dir),
		Commit: e.cfg.Backup.GitCommit,
		Author: gitops.Author{Name: e.cfg.Backup.AuthorName, Email: e.cfg.Backup.AuthorEmail},
		Log:    e.log,
	}
}

// warnIfNearlyFull prints a notice when the store is above the warning level.
func (e *env) warnIfNearlyFull(cmd *cobra.Command) {
	if u := e.store.Usage(); u.UsedPercent > store.NearlyFullPercent {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: storage is %.0f%% full; export a backup and clear old data\n", u.UsedPercent)
	}
}
