package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/faheemho18/monefy-pwa-clone/internal/ledger"
	"github.com/faheemho18/monefy-pwa-clone/internal/model"
)

func newSummaryCommand(e *env) *cobra.Command {
	var period string
	var top int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income, expenses and balance for a period",
		Args:  cobra.NoArgs,
		RunE: e.withStore(func(cmd *cobra.Command, _ []string) error {
			p, err := ledger.ParsePeriod(period)
			if err != nil {
				return err
			}
			now := e.now()
			txns := e.ledger.Transactions()
			trend := ledger.BalanceTrend(txns, p, now)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d transactions)\n", p.DisplayName(), trend.Current.Count)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(tw, "Income\t%s\t%s\t\n", trend.Current.Income.StringFixed(2), formatChange(trend.Income))
			fmt.Fprintf(tw, "Expenses\t%s\t%s\t\n", trend.Current.Expenses.StringFixed(2), formatChange(trend.Expenses))
			fmt.Fprintf(tw, "Balance\t%s\t%s\t\n", trend.Current.Net.StringFixed(2), formatChange(trend.Net))
			if err := tw.Flush(); err != nil {
				return err
			}

			if top > 0 {
				start, end := ledger.Range(p, now)
				totals := ledger.TotalsByCategory(txns, e.ledger.CategoryIndex(), model.KindExpense, start, end)
				if len(totals) > 0 {
					fmt.Fprintln(out, "\nTop expenses")
					writeTotals(out, totals[:min(top, len(totals))])
				}
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&period, "period", "p", string(ledger.PeriodMonth), "today, week, month, year or all")
	cmd.Flags().IntVar(&top, "top", 5, "number of expense categories to break out (0 hides them)")

	return cmd
}

func formatChange(c ledger.Change) string {
	arrow := map[ledger.Direction]string{ledger.Up: "↑", ledger.Down: "↓", ledger.Neutral: "="}[c.Direction]
	return fmt.Sprintf("%s %+d%%", arrow, c.Percent)
}

func writeTotals(w io.Writer, totals []ledger.CategoryTotal) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range totals {
		fmt.Fprintf(tw, "  %s\t%s\t%d\n", t.Category.Name, t.Total.StringFixed(2), t.Count)
	}
	_ = tw.Flush()
}
