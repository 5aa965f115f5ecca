package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/faheemho18/monefy-pwa-clone/internal/activity"
	"github.com/faheemho18/monefy-pwa-clone/internal/id"
	"github.com/faheemho18/monefy-pwa-clone/internal/ledger"
	"github.com/faheemho18/monefy-pwa-clone/internal/model"
)

func newCategoryCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "List and manage categories",
		Args:    cobra.NoArgs,
		RunE:    e.withStore(func(cmd *cobra.Command, _ []string) error { return printCategories(cmd, e) }),
	}
	cmd.AddCommand(
		newCategoryAddCommand(e),
		newCategoryEditCommand(e),
		newCategoryDeleteCommand(e),
	)
	return cmd
}

func printCategories(cmd *cobra.Command, e *env) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tORDER\tNAME\tICON\tCOLOR")
	for _, c := range e.ledger.Categories() {
		name := c.Name
		if c.IsDefault {
			name += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", id.Short(c.ID), c.Kind, c.Order, name, c.Icon, c.Color)
	}
	return tw.Flush()
}

func newCategoryAddCommand(e *env) *cobra.Command {
	var d ledger.CategoryDraft
	var income bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: e.withStore(func(cmd *cobra.Command, args []string) error {
			d.Name = args[0]
			d.Kind = model.KindExpense
			if income {
				d.Kind = model.KindIncome
			}
			cat, err := e.ledger.AddCategory(d)
			if err != nil {
				return err
			}
			e.record(activity.Entry{Action: activity.ActionAdd, Subject: "category", RecordID: cat.ID, Details: string(cat.Kind) + " " + cat.Name})
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s category %s (%s)\n", cat.Kind, cat.Name, id.Short(cat.ID))
			return nil
		}),
	}

	cmd.Flags().BoolVar(&income, "income", false, "income category")
	cmd.Flags().StringVar(&d.Icon, "icon", "other", "icon name")
	cmd.Flags().StringVar(&d.Color, "color", "bg-gray-500", "color class")
	cmd.Flags().IntVar(&d.Order, "order", 0, "display order (default: last)")

	return cmd
}

func newCategoryEditCommand(e *env) *cobra.Command {
	var name, icon, color string
	var order int

	cmd := &cobra.Command{
		Use:   "edit <id-or-name>",
		Short: "Rename or restyle a category",
		Args:  cobra.ExactArgs(1),
		RunE: e.withStore(func(cmd *cobra.Command, args []string) error {
			cat, err := findCategory(e.ledger.CategoryIndex(), args[0])
			if err != nil {
				return err
			}
			d := ledger.CategoryDraft{Name: cat.Name, Icon: cat.Icon, Color: cat.Color, Kind: cat.Kind, Order: cat.Order}
			flags := cmd.Flags()
			if flags.Changed("name") {
				d.Name = name
			}
			if flags.Changed("icon") {
				d.Icon = icon
			}
			if flags.Changed("color") {
				d.Color = color
			}
			if flags.Changed("order") {
				d.Order = order
			}

			updated, err := e.ledger.UpdateCategory(cat.ID, d)
			if err != nil {
				return err
			}
			e.record(activity.Entry{Action: activity.ActionEdit, Subject: "category", RecordID: updated.ID, Details: string(updated.Kind) + " " + updated.Name})
			fmt.Fprintf(cmd.OutOrStdout(), "Updated category %s\n", updated.Name)
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&icon, "icon", "", "new icon")
	cmd.Flags().StringVar(&color, "color", "", "new color")
	cmd.Flags().IntVar(&order, "order", 0, "new display order")

	return cmd
}

func newCategoryDeleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id-or-name>",
		Short: "Delete a category; its transactions show as Unknown",
		Args:  cobra.ExactArgs(1),
		RunE: e.withStore(func(cmd *cobra.Command, args []string) error {
			cat, err := findCategory(e.ledger.CategoryIndex(), args[0])
			if err != nil {
				return err
			}
			orphaned, err := e.ledger.DeleteCategory(cat.ID)
			if err != nil {
				return err
			}
			e.record(activity.Entry{Action: activity.ActionDelete, Subject: "category", RecordID: cat.ID, Details: string(cat.Kind) + " " + cat.Name})
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", cat.Name)
			if orphaned > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d transactions now have no category\n", orphaned)
			}
			return nil
		}),
	}
}

// findCategory looks ref up as a name of either kind, then as an id.
func findCategory(idx *ledger.Categories, ref string) (model.Category, error) {
	var match []model.Category
	for _, kind := range []model.Kind{model.KindExpense, model.KindIncome} {
		if cat, err := resolveCategory(idx, kind, ref); err == nil {
			match = append(match, cat)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return model.Category{}, fmt.Errorf("category %q: %w", ref, ledger.ErrNotFound)
	default:
		return model.Category{}, fmt.Errorf("%q names both an expense and an income category; use the id", ref)
	}
}
