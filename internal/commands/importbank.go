package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/faheemho18/monefy-pwa-clone/internal/activity"
	"github.com/faheemho18/monefy-pwa-clone/internal/importer"
	"github.com/faheemho18/monefy-pwa-clone/internal/ledger"
	"github.com/faheemho18/monefy-pwa-clone/internal/model"
)

type importBankOptions struct {
	format          string
	expenseCategory string
	incomeCategory  string
	dryRun          bool
}

func newImportBankCommand(e *env) *cobra.Command {
	var opts importBankOptions

	cmd := &cobra.Command{
		Use:   "import-bank [file.csv...]",
		Short: "Import bank statement CSVs as transactions",
		Long: "Import bank statement CSVs. Without arguments every CSV in <dir>/import/ is\n" +
			"imported and then moved to import/processed/.",
		RunE: e.withStore(func(cmd *cobra.Command, args []string) error {
			return runImportBank(cmd, e, opts, args)
		}),
	}

	cmd.Flags().StringVar(&opts.format, "format", "", "statement format (default from config)")
	cmd.Flags().StringVar(&opts.expenseCategory, "expense-category", "", "category for money out (default from config)")
	cmd.Flags().StringVar(&opts.incomeCategory, "income-category", "", "category for money in (default from config)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse and report without saving")

	return cmd
}

func runImportBank(cmd *cobra.Command, e *env, opts importBankOptions, paths []string) error {
	format := firstNonEmpty(opts.format, e.cfg.Import.Format)
	parser := importer.DefaultRegistry().Get(format)
	if parser == nil {
		return fmt.Errorf("unknown statement format %q (have %v)", format, importer.DefaultRegistry().Formats())
	}

	idx := e.ledger.CategoryIndex()
	expense, err := resolveCategory(idx, model.KindExpense, firstNonEmpty(opts.expenseCategory, e.cfg.Import.ExpenseCategory))
	if err != nil {
		return err
	}
	income, err := resolveCategory(idx, model.KindIncome, firstNonEmpty(opts.incomeCategory, e.cfg.Import.IncomeCategory))
	if err != nil {
		return err
	}
	targets := importer.Targets{ExpenseCategoryID: expense.ID, IncomeCategoryID: income.ID}

	fromInbox := len(paths) == 0
	if fromInbox {
		files, err := importer.Scan(e.dataDir)
		if err != nil {
			return err
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
		if len(paths) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import")
			return nil
		}
	}

	out := cmd.OutOrStdout()
	for _, path := range paths {
		drafts, err := readStatement(parser, path, targets)
		if err != nil {
			return err
		}
		if opts.dryRun {
			fmt.Fprintf(out, "%s: %d transactions (dry run)\n", filepath.Base(path), len(drafts))
			continue
		}

		added, err := e.ledger.AddTransactions(drafts)
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		e.record(activity.Entry{
			Action:  activity.ActionImport,
			Subject: "transaction",
			Details: fmt.Sprintf("%d transactions from %s (%s)", len(added), filepath.Base(path), parser.Format()),
		})
		fmt.Fprintf(out, "%s: imported %d transactions\n", filepath.Base(path), len(added))

		if fromInbox {
			if err := importer.MarkProcessed(e.dataDir, filepath.Base(path)); err != nil {
				return err
			}
		}
	}
	e.warnIfNearlyFull(cmd)
	return nil
}

func readStatement(p importer.Parser, path string, to importer.Targets) ([]ledger.TransactionDraft, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	rows, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return importer.ToDrafts(rows, to), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
