package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/faheemho18/monefy-pwa-clone/internal/activity"
	"github.com/faheemho18/monefy-pwa-clone/internal/backup"
	"github.com/faheemho18/monefy-pwa-clone/internal/ledger"
)

func newExportCommand(e *env) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup document (json) or a spreadsheet (csv)",
		Args:  cobra.NoArgs,
		RunE: e.withStore(func(cmd *cobra.Command, _ []string) error {
			var buf bytes.Buffer
			switch format {
			case "json":
				text, err := e.backups.Export()
				if err != nil {
					return err
				}
				buf.WriteString(text + "\n")
			case "csv":
				if err := ledger.WriteTransactionsCSV(&buf, e.ledger.Transactions(), e.ledger.CategoryIndex()); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown export format %q (want json or csv)", format)
			}

			if out == "" || out == "-" {
				if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
					return fmt.Errorf("writing export: %w", err)
				}
				return nil
			}
			if err := writeFileReplacing(out, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", out)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or csv")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	return cmd
}

// writeFileReplacing writes data next to path and renames it into place, so
// an existing file survives a failed write.
func writeFileReplacing(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".monefy-export-*")
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func newImportCommand(e *env) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace all data with a backup document, or merge a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: e.withStore(func(cmd *cobra.Command, args []string) error {
			switch format {
			case "json":
				doc, err := e.importDocument(cmd, args[0])
				if err != nil {
					return err
				}
				e.recordRestore("import "+args[0], doc)
				printRestored(cmd, doc)
			case "csv":
				var r io.Reader = cmd.InOrStdin()
				if args[0] != "-" {
					f, err := os.Open(args[0])
					if err != nil {
						return fmt.Errorf("opening %s: %w", args[0], err)
					}
					defer f.Close()
					r = f
				}
				txns, err := ledger.ReadTransactionsCSV(r)
				if err != nil {
					return err
				}
				n, err := e.ledger.MergeTransactions(txns)
				if err != nil {
					return err
				}
				e.record(activity.Entry{Action: activity.ActionImport, Subject: "transaction", Details: fmt.Sprintf("%d of %d transactions from %s", n, len(txns), filepath.Base(args[0]))})
				fmt.Fprintf(cmd.OutOrStdout(), "Merged %d transactions (%d already present)\n", n, len(txns)-n)
				idx := e.ledger.CategoryIndex()
				var dangling int
				for _, t := range txns {
					if !idx.Exists(t.CategoryID) {
						dangling++
					}
				}
				if dangling > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d rows reference categories that do not exist and will show as %s\n", dangling, ledger.UnknownCategoryName)
				}
				e.warnIfNearlyFull(cmd)
			default:
				return fmt.Errorf("unknown import format %q (want json or csv)", format)
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "json (replace everything) or csv (merge transactions)")

	return cmd
}

func (e *env) importDocument(cmd *cobra.Command, src string) (backup.Document, error) {
	if src != "-" {
		doc, err := backup.ReadFile(src)
		if err != nil {
			return backup.Document{}, err
		}
		return doc, e.backups.Restore(doc)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return backup.Document{}, fmt.Errorf("reading stdin: %w", err)
	}
	return e.backups.Import(data)
}

func newBackupCommand(e *env) *cobra.Command {
	var noFile, gcs bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Save a recovery point and publish it to the backup directory and GCS",
		Args:  cobra.NoArgs,
		RunE: e.withStore(func(cmd *cobra.Command, _ []string) error {
			doc, err := e.backups.Create()
			if err != nil {
				if doc.FormatVersion == "" {
					return err
				}
				e.log.Warn().Err(err).Msg("publishing without a recovery point")
			}

			sinks, cleanup, err := e.sinks(cmd.Context(), !noFile, gcs)
			if err != nil {
				return err
			}
			defer cleanup()
			if len(sinks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Saved recovery point")
				return nil
			}

			name, err := backup.Publish(cmd.Context(), doc, sinks...)
			if err != nil {
				return err
			}
			e.record(activity.Entry{Action: activity.ActionBackup, Subject: "backup", RecordID: name, Details: fmt.Sprintf("%d transactions, %d categories", len(doc.Payload.Transactions), len(doc.Payload.Categories))})
			for _, s := range sinks {
				fmt.Fprintf(cmd.OutOrStdout(), "Published %s to %s\n", name, s.Name())
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&noFile, "no-file", false, "skip the local backup directory")
	cmd.Flags().BoolVar(&gcs, "gcs", false, "also upload to the configured GCS bucket")

	return cmd
}

func newRestoreCommand(e *env) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "restore [name]",
		Short: "Restore from the recovery point, the backup directory or GCS",
		Long: "Restore replaces transactions, categories and app state.\n" +
			"--from recovery (default) uses the recovery point saved by the last backup or export.\n" +
			"--from dir and --from gcs read the named document, or the newest one.",
		Args: cobra.MaximumNArgs(1),
		RunE: e.withStore(func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}

			var doc backup.Document
			switch from {
			case "recovery":
				if name != "" {
					return errors.New("a name cannot be used with --from recovery")
				}
				rp, err := e.backups.RestoreRecoveryPoint()
				if err != nil {
					return err
				}
				doc = rp
			case "dir", "gcs":
				sinks, cleanup, err := e.sinks(cmd.Context(), from == "dir", from == "gcs")
				if err != nil {
					return err
				}
				defer cleanup()
				text, err := backup.Fetch(cmd.Context(), sinks[0], name)
				if err != nil {
					return err
				}
				if doc, err = e.backups.Import([]byte(text)); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown source %q (want recovery, dir or gcs)", from)
			}

			e.recordRestore("restore from "+from, doc)
			printRestored(cmd, doc)
			return nil
		}),
	}

	cmd.Flags().StringVar(&from, "from", "recovery", "recovery, dir or gcs")

	return cmd
}

// sinks builds the requested backup destinations. cleanup releases clients.
func (e *env) sinks(ctx context.Context, file, gcs bool) ([]backup.Sink, func(), error) {
	var sinks []backup.Sink
	cleanup := func() {}
	if file {
		sinks = append(sinks, e.fileSink())
	}
	if gcs {
		if e.cfg.Backup.GCSBucket == "" {
			return nil, cleanup, errors.New("no GCS bucket configured (backup.gcs_bucket or MONEFY_GCS_BUCKET)")
		}
		s, err := backup.NewGCSSink(ctx, e.cfg.Backup.GCSBucket, e.cfg.Backup.GCSPrefix)
		if err != nil {
			return nil, cleanup, err
		}
		sinks = append(sinks, s)
		cleanup = func() {
			if err := s.Close(); err != nil {
				e.log.Warn().Err(err).Msg("closing GCS client")
			}
		}
	}
	return sinks, cleanup, nil
}

func (e *env) recordRestore(source string, doc backup.Document) {
	e.record(activity.Entry{
		Action:  activity.ActionRestore,
		Subject: "store",
		Details: fmt.Sprintf("%s: %d transactions, %d categories, taken %s", filepath.ToSlash(source), len(doc.Payload.Transactions), len(doc.Payload.Categories), doc.Timestamp.Format("2006-01-02T15:04:05Z07:00")),
	})
}

func printRestored(cmd *cobra.Command, doc backup.Document) {
	fmt.Fprintf(cmd.OutOrStdout(), "Restored %d transactions and %d categories\n", len(doc.Payload.Transactions), len(doc.Payload.Categories))
}
