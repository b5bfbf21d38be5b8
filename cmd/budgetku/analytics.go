package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"budgetku/internal/cli"
	"budgetku/internal/core"
)

func analyticsCmd() *cobra.Command {
	var window windowFlags

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Summarize income, expenses and budgets for a period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				p, ref, err := window.resolve(app)
				if err != nil {
					return err
				}
				w, err := core.WindowFor(p, ref)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				currency := app.Store.Settings().Currency
				money := func(v float64) string { return core.FormatCurrency(v, currency) }

				a := app.Store.Analytics(p, ref)
				title := fmt.Sprintf("%s %s to %s", strings.ToUpper(string(p[:1]))+string(p[1:]),
					w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
				fmt.Fprintln(out, cli.BoxStyle.Render(strings.Join([]string{
					cli.TitleStyle.Render(title),
					"Income:  " + cli.SuccessStyle.Render(money(a.TotalIncome)),
					"Expense: " + cli.ErrorStyle.Render(money(a.TotalExpense)),
					"Net:     " + money(core.Subtract(a.TotalIncome, a.TotalExpense)),
					fmt.Sprintf("Budget:  %s for %s", money(a.TotalBudget), core.MonthOf(ref)),
				}, "\n")))

				byTag := app.Store.ExpenseByTag(p, ref)
				if len(byTag) == 0 {
					fmt.Fprintln(out, cli.SubtleStyle.Render("No expenses in this period."))
					return nil
				}
				rows := make([][]string, 0, len(byTag))
				for _, t := range byTag {
					share := 0.0
					if a.TotalExpense > 0 {
						share = t.Amount / a.TotalExpense * 100
					}
					rows = append(rows, []string{
						cli.Swatch(t.Color) + " " + t.Tag,
						money(t.Amount),
						fmt.Sprintf("%.1f%%", share),
					})
				}
				return cli.Table(out, []string{"Tag", "Spent", "Share"}, rows)
			})
		},
	}
	window.register(cmd)
	return cmd
}
