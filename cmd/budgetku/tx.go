package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"budgetku/internal/cli"
	"budgetku/internal/core"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Manage transactions",
	}
	cmd.AddCommand(txAddCmd())
	cmd.AddCommand(txEditCmd())
	cmd.AddCommand(txDeleteCmd())
	cmd.AddCommand(txListCmd())
	cmd.AddCommand(txHistoryCmd())
	return cmd
}

func txAddCmd() *cobra.Command {
	var (
		txType   string
		amount   string
		category string
		date     string
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense",
		Example: `  budgetku tx add --type expense --amount 45000 --tag Groceries
  budgetku tx add --type income --amount 12,50 --category Salary --date 2024-09-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := core.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				in := core.TransactionInput{
					Type:     core.TransactionType(strings.ToLower(txType)),
					Amount:   value,
					Category: category,
					Date:     date,
					Tags:     tags,
				}
				if in.Date == "" {
					in.Date = core.FormatDate(app.Store.Now())
				}
				if in.Category == "" {
					in.Category = defaultCategory(in.Type)
				}

				tx, err := app.Store.AddTransaction(in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d: %s\n",
					cli.SuccessStyle.Render("Added transaction"), tx.ID,
					core.FormatCurrency(tx.Amount, app.Store.Settings().Currency))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&txType, "type", "t", string(core.Expense), "income or expense")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount, dot or comma decimals")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category label (defaults to Income/Expense)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "ISO-8601 date (defaults to now)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag, repeatable")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func defaultCategory(t core.TransactionType) string {
	if t == core.Income {
		return "Income"
	}
	return "Expense"
}

func txEditCmd() *cobra.Command {
	var (
		txType   string
		amount   string
		category string
		date     string
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}

			var patch core.TransactionPatch
			flags := cmd.Flags()
			if flags.Changed("type") {
				t := core.TransactionType(strings.ToLower(txType))
				patch.Type = &t
			}
			if flags.Changed("amount") {
				value, err := core.ParseAmount(amount)
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", amount, err)
				}
				patch.Amount = &value
			}
			if flags.Changed("category") {
				patch.Category = &category
			}
			if flags.Changed("date") {
				patch.Date = &date
			}
			if flags.Changed("tag") {
				patch.Tags = &tags
			}

			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				_, found, err := app.Store.EditTransaction(id, patch)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("transaction %d not found", id)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("Updated transaction %d", id)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&txType, "type", "t", "", "income or expense")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category label")
	cmd.Flags().StringVarP(&date, "date", "d", "", "ISO-8601 date")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "replace the tags, repeatable")
	return cmd
}

func txDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				if !app.Store.DeleteTransaction(id) {
					return fmt.Errorf("transaction %d not found", id)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("Deleted transaction %d", id)))
				return nil
			})
		},
	}
}

// windowFlags holds the --period and --date flags shared by windowed queries.
type windowFlags struct {
	period string
	date   string
}

func (f *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.period, "period", "p", "", "day, week or month (defaults to the saved period)")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "reference date (defaults to today)")
}

func (f *windowFlags) resolve(app *cli.App) (core.Period, time.Time, error) {
	p := app.Store.Settings().Period
	if f.period != "" {
		var err error
		if p, err = core.ParsePeriod(f.period); err != nil {
			return "", time.Time{}, err
		}
	}
	ref := app.Store.Now()
	if f.date != "" {
		var err error
		if ref, err = core.ParseDate(f.date, app.Store.Location()); err != nil {
			return "", time.Time{}, err
		}
	}
	return p, ref, nil
}

func txListCmd() *cobra.Command {
	var (
		window windowFlags
		tag    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions in a period window or by tag",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				var txs []core.Transaction
				if tag != "" {
					txs = app.Store.TransactionsByTag(tag)
				} else {
					p, ref, err := window.resolve(app)
					if err != nil {
						return err
					}
					txs = app.Store.TransactionsByPeriod(p, ref)
				}
				if len(txs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("No transactions found."))
					return nil
				}
				return cli.Table(cmd.OutOrStdout(), transactionHeaders, transactionRows(app, txs))
			})
		},
	}
	window.register(cmd)
	cmd.Flags().StringVar(&tag, "tag", "", "list every transaction carrying this tag")
	return cmd
}

func txHistoryCmd() *cobra.Command {
	var window windowFlags

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show transactions grouped by day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				p, ref, err := window.resolve(app)
				if err != nil {
					return err
				}
				groups := app.Store.History(p, ref)
				if len(groups) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("No transactions found."))
					return nil
				}
				for _, g := range groups {
					fmt.Fprintln(cmd.OutOrStdout(), cli.TitleStyle.Render(g.Date))
					if err := cli.Table(cmd.OutOrStdout(), transactionHeaders, transactionRows(app, g.Transactions)); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	}
	window.register(cmd)
	return cmd
}

var transactionHeaders = []string{"ID", "Date", "Type", "Amount", "Category", "Tags"}

func transactionRows(app *cli.App, txs []core.Transaction) [][]string {
	currency := app.Store.Settings().Currency
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		amount := core.FormatCurrency(tx.Amount, currency)
		if tx.Type == core.Expense {
			amount = cli.ErrorStyle.Render("-" + amount)
		} else {
			amount = cli.SuccessStyle.Render("+" + amount)
		}
		rows = append(rows, []string{
			strconv.FormatInt(tx.ID, 10),
			tx.Date,
			string(tx.Type),
			amount,
			tx.Category,
			strings.Join(tx.Tags, ", "),
		})
	}
	return rows
}
