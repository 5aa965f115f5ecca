package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/faheemho18/monefy-pwa-clone/internal/activity"
	"github.com/faheemho18/monefy-pwa-clone/internal/id"
	"github.com/faheemho18/monefy-pwa-clone/internal/ledger"
	"github.com/faheemho18/monefy-pwa-clone/internal/model"
)

type txnFlags struct {
	income   bool
	category string
	note     string
	date     string
}

func newAddCommand(e *env) *cobra.Command {
	var f txnFlags

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record an expense (or income with --income)",
		Args:  cobra.ExactArgs(1),
		RunE: e.withStore(func(cmd *cobra.Command, args []string) error {
			kind := model.KindExpense
			if f.income {
				kind = model.KindIncome
			}
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			cat, err := resolveCategory(e.ledger.CategoryIndex(), kind, f.category)
			if err != nil {
				return err
			}
			at := e.now()
			if f.date != "" {
				if at, err = parseDate(f.date, e.now()); err != nil {
					return err
				}
			}

			txn, err := e.ledger.AddTransaction(ledger.TransactionDraft{
				Amount:      amount,
				Kind:        kind,
				CategoryID:  cat.ID,
				Description: f.note,
				OccurredAt:  at,
			})
			if err != nil {
				return err
			}

			e.record(activity.Entry{Action: activity.ActionAdd, Subject: "transaction", RecordID: txn.ID, Details: describe(txn, cat)})
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s %s (%s)\n", id.Short(txn.ID), txn.Kind, txn.Amount.StringFixed(2), cat.Name)
			e.warnIfNearlyFull(cmd)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&f.income, "income", false, "record income instead of an expense")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "category name or id (required)")
	cmd.Flags().StringVarP(&f.note, "note", "n", "", "description")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "date as YYYY-MM-DD (default now)")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newEditCommand(e *env) *cobra.Command {
	var f txnFlags
	var amount string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the amount, category, note or date of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: e.withStore(func(cmd *cobra.Command, args []string) error {
			txn, err := e.ledger.Transaction(args[0])
			if err != nil {
				return err
			}
			draft := ledger.TransactionDraft{
				Amount:      txn.Amount,
				Kind:        txn.Kind,
				CategoryID:  txn.CategoryID,
				Description: txn.Description,
				OccurredAt:  txn.OccurredAt,
			}

			flags := cmd.Flags()
			if flags.Changed("amount") {
				if draft.Amount, err = parseAmount(amount); err != nil {
					return err
				}
			}
			idx := e.ledger.CategoryIndex()
			if flags.Changed("category") {
				cat, err := resolveCategory(idx, txn.Kind, f.category)
				if err != nil {
					return err
				}
				draft.CategoryID = cat.ID
			}
			if flags.Changed("note") {
				draft.Description = f.note
			}
			if flags.Changed("date") {
				if draft.OccurredAt, err = parseDate(f.date, e.now()); err != nil {
					return err
				}
			}

			updated, err := e.ledger.UpdateTransaction(txn.ID, draft)
			if err != nil {
				return err
			}
			e.record(activity.Entry{Action: activity.ActionEdit, Subject: "transaction", RecordID: updated.ID, Details: describe(updated, idx.For(updated))})
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", id.Short(updated.ID))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "new amount")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "new category name or id")
	cmd.Flags().StringVarP(&f.note, "note", "n", "", "new description")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "new date as YYYY-MM-DD")

	return cmd
}

func newDeleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: e.withStore(func(cmd *cobra.Command, args []string) error {
			txn, err := e.ledger.Transaction(args[0])
			if err != nil {
				return err
			}
			if err := e.ledger.DeleteTransaction(txn.ID); err != nil {
				return err
			}
			e.record(activity.Entry{Action: activity.ActionDelete, Subject: "transaction", RecordID: txn.ID, Details: describe(txn, e.ledger.CategoryFor(txn))})
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id.Short(txn.ID))
			return nil
		}),
	}
}

func newListCommand(e *env) *cobra.Command {
	var period, kind, category string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: e.withStore(func(cmd *cobra.Command, _ []string) error {
			p, err := ledger.ParsePeriod(period)
			if err != nil {
				return err
			}
			start, end := ledger.Range(p, e.now())
			idx := e.ledger.CategoryIndex()
			loc := e.now().Location()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tKIND\tAMOUNT\tCATEGORY\tDESCRIPTION")
			shown := 0
			for _, t := range e.ledger.Transactions() {
				if t.OccurredAt.Before(start) || t.OccurredAt.After(end) {
					continue
				}
				if kind != "" && string(t.Kind) != kind {
					continue
				}
				cat := idx.For(t)
				if category != "" && !strings.EqualFold(cat.Name, category) && cat.ID != category {
					continue
				}
				if limit > 0 && shown == limit {
					break
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					id.Short(t.ID), t.OccurredAt.In(loc).Format(time.DateOnly), t.Kind, t.Signed().StringFixed(2), cat.Name, t.Description)
				shown++
			}
			return tw.Flush()
		}),
	}

	cmd.Flags().StringVarP(&period, "period", "p", string(ledger.PeriodAll), "today, week, month, year or all")
	cmd.Flags().StringVar(&kind, "kind", "", "only expense or income")
	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category (name or id)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "show at most this many rows")

	return cmd
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// parseDate reads YYYY-MM-DD in now's location.
func parseDate(s string, now time.Time) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// resolveCategory finds a category of kind by name, or by id or id prefix.
func resolveCategory(idx *ledger.Categories, kind model.Kind, ref string) (model.Category, error) {
	if cat, ok := idx.ByName(kind, ref); ok {
		return cat, nil
	}
	if cat, ok := idx.Get(ref); ok {
		if cat.Kind != kind {
			return model.Category{}, fmt.Errorf("category %q is an %s category", cat.Name, cat.Kind)
		}
		return cat, nil
	}
	var match []model.Category
	for _, c := range idx.ByKind(kind) {
		if len(ref) >= 4 && strings.HasPrefix(c.ID, ref) {
			match = append(match, c)
		}
	}
	if len(match) == 1 {
		return match[0], nil
	}
	return model.Category{}, fmt.Errorf("no %s category %q: %w", kind, ref, ledger.ErrNotFound)
}

func describe(t model.Transaction, cat model.Category) string {
	s := fmt.Sprintf("%s %s %s on %s", t.Kind, t.Amount.StringFixed(2), cat.Name, t.OccurredAt.Format(time.DateOnly))
	if t.Description != "" {
		s += ": " + t.Description
	}
	return s
}
