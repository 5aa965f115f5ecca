package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/faheemho18/monefy-pwa-clone/internal/activity"
	"github.com/faheemho18/monefy-pwa-clone/internal/config"
	"github.com/faheemho18/monefy-pwa-clone/internal/gitops"
)

type initOptions struct {
	backend   string
	capacity  int64
	gitCommit bool
	household string
	user      string
}

func newInitCommand(e *env) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create " + config.FileName + " and seed the default categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, e, opts)
		},
	}

	cmd.Flags().StringVar(&opts.backend, "backend", "file", "storage backend: memory, file or sqlite")
	cmd.Flags().Int64Var(&opts.capacity, "capacity", 0, "storage capacity in bytes (0 = backend default)")
	cmd.Flags().BoolVar(&opts.gitCommit, "git", false, "commit published backups to a git repository")
	cmd.Flags().StringVar(&opts.household, "household", "", "household id stamped on new records")
	cmd.Flags().StringVar(&opts.user, "user", "", "user id stamped on new records")

	return cmd
}

func runInit(cmd *cobra.Command, e *env, opts initOptions) error {
	dir := e.dataDir
	for _, d := range []string{"logs", "import", filepath.Join("import", "processed")} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default()
	cfg.Storage.Backend = opts.backend
	cfg.Storage.CapacityBytes = opts.capacity
	if opts.backend == "sqlite" {
		cfg.Storage.Path = "monefy.db"
	}
	cfg.Backup.GitCommit = opts.gitCommit
	cfg.Household.ID = opts.household
	cfg.Household.UserID = opts.user
	cfg.Log = e.cfg.Log
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options:\n%w", err)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}
	e.cfg = cfg

	if cfg.Backup.GitCommit {
		backupDir := config.Resolve(dir, cfg.Backup.Dir)
		if err := os.MkdirAll(backupDir, 0o755); err != nil {
			return fmt.Errorf("creating backup dir: %w", err)
		}
		if _, err := gitops.EnsureRepo(backupDir); err != nil {
			return fmt.Errorf("git init: %w", err)
		}
	}

	return e.withStore(func(cmd *cobra.Command, _ []string) error {
		n, err := e.ledger.SeedDefaultCategories()
		if err != nil {
			return err
		}
		if n > 0 {
			e.record(activity.Entry{Action: activity.ActionSeed, Subject: "category", Details: fmt.Sprintf("%d default categories", n)})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized monefy data in %s (%s backend, %d categories seeded)\n", dir, cfg.Storage.Backend, n)
		return nil
	})(cmd, nil)
}
