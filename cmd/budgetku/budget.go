package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"budgetku/internal/cli"
	"budgetku/internal/core"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage monthly per-tag budgets",
	}
	cmd.AddCommand(budgetShowCmd())
	cmd.AddCommand(budgetSetCmd())
	cmd.AddCommand(budgetRemoveCmd())
	return cmd
}

// monthArg returns args[0] as a month, or the store's current month.
func monthArg(app *cli.App, args []string) (core.Month, error) {
	if len(args) == 0 {
		return core.MonthOf(app.Store.Now()), nil
	}
	return core.ParseMonth(args[0])
}

func budgetShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [YYYY-MM]",
		Short: "Show budget progress for a month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				month, err := monthArg(app, args)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				currency := app.Store.Settings().Currency
				money := func(v float64) string { return core.FormatCurrency(v, currency) }

				progress := app.Store.BudgetProgress(month)
				remaining := money(progress.Remaining)
				if progress.Remaining < 0 {
					remaining = cli.ErrorStyle.Render(remaining)
				}
				fmt.Fprintln(out, cli.BoxStyle.Render(strings.Join([]string{
					cli.TitleStyle.Render("Budget " + month.String()),
					"Budget:    " + money(progress.Budget),
					"Spent:     " + money(progress.Spent),
					"Remaining: " + remaining,
				}, "\n")))

				items := app.Store.BudgetItems(month)
				if len(items) > 0 {
					rows := make([][]string, 0, len(items))
					for _, it := range items {
						status := cli.SuccessStyle.Render("ok")
						switch {
						case it.Spent > it.Limit:
							status = cli.ErrorStyle.Render("over")
						case core.ExceedsWarning(it.Spent, it.Limit):
							status = cli.WarningStyle.Render("near limit")
						}
						rows = append(rows, []string{
							cli.Swatch(app.Store.TagColor(it.Tag)) + " " + it.Tag,
							money(it.Limit),
							money(it.Spent),
							status,
						})
					}
					if err := cli.Table(out, []string{"Tag", "Limit", "Spent", "Status"}, rows); err != nil {
						return err
					}
				}

				if free := app.Store.TagsWithoutBudget(month); len(free) > 0 {
					fmt.Fprintln(out, cli.SubtleStyle.Render("Without budget: "+strings.Join(free, ", ")))
				}
				return nil
			})
		},
	}
}

func budgetSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set <YYYY-MM> <tag=limit>...",
		Short:   "Replace a month's limits",
		Example: `  budgetku budget set 2024-09 Groceries=1500000 "Dining Out=400000"`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := core.ParseMonth(args[0])
			if err != nil {
				return err
			}
			limits, err := parseLimits(args[1:])
			if err != nil {
				return err
			}
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				if err := app.Store.SetBudget(month, limits); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(
					fmt.Sprintf("Set %d budget(s) for %s", len(limits), month)))
				return nil
			})
		},
	}
}

// parseLimits reads tag=limit pairs. The split is on the last '=' so tag
// names may contain one.
func parseLimits(pairs []string) (map[string]float64, error) {
	limits := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		i := strings.LastIndex(pair, "=")
		if i <= 0 {
			return nil, fmt.Errorf("invalid budget %q: want tag=limit", pair)
		}
		limit, err := core.ParseAmount(pair[i+1:])
		if err != nil {
			return nil, fmt.Errorf("invalid budget %q: %w", pair, err)
		}
		limits[strings.TrimSpace(pair[:i])] = limit
	}
	return limits, nil
}

func budgetRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <YYYY-MM> <tag>",
		Short: "Remove one tag's limit from a month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := core.ParseMonth(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				if !app.Store.RemoveBudget(month, args[1]) {
					return fmt.Errorf("no budget for %q in %s", args[1], month)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(
					fmt.Sprintf("Removed budget for %s in %s", args[1], month)))
				return nil
			})
		},
	}
}
