package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/faheemho18/monefy-pwa-clone/internal/activity"
)

func newUsageCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show how much of the storage capacity is in use",
		Args:  cobra.NoArgs,
		RunE: e.withStore(func(cmd *cobra.Command, _ []string) error {
			u := e.store.Usage()
			out := cmd.OutOrStdout()
			if !u.Available && u.UsedBytes == 0 {
				fmt.Fprintln(out, "Storage is unavailable")
				return nil
			}

			capacity := fmt.Sprintf("%d bytes", u.CapacityBytes)
			if u.Estimated {
				capacity += " (estimated)"
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Backend\t%s\n", e.cfg.Storage.Backend)
			fmt.Fprintf(tw, "Writable\t%t\n", u.Available)
			fmt.Fprintf(tw, "Used\t%d bytes (%.1f%%)\n", u.UsedBytes, u.UsedPercent)
			fmt.Fprintf(tw, "Free\t%d bytes\n", u.FreeBytesEstimate)
			fmt.Fprintf(tw, "Capacity\t%s\n", capacity)
			if err := tw.Flush(); err != nil {
				return err
			}
			if e.store.NearlyFull() {
				fmt.Fprintln(out, "Storage is nearly full: export a backup and clear old data.")
			}
			return nil
		}),
	}
}

func newClearCommand(e *env) *cobra.Command {
	var all, yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all transactions, categories and app state",
		Args:  cobra.NoArgs,
		RunE: e.withStore(func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("clear deletes every record; pass --yes to confirm")
			}
			what := "live data"
			if all {
				e.store.ClearAll()
				what = "live data and recovery point"
			} else {
				e.store.Clear()
			}
			e.record(activity.Entry{Action: activity.ActionClear, Subject: "store", Details: what})
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", what)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&all, "all", false, "also remove the recovery point")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm")

	return cmd
}

func newLogCommand(e *env) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent changes from the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := activity.Tail(e.dataDir, n)
			if err != nil {
				return err
			}
			loc := e.now().Location()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, en := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", en.Timestamp.In(loc).Format(time.DateTime), en.Action, en.Subject, en.Details)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&n, "lines", "n", 20, "number of entries (0 for all)")

	return cmd
}
