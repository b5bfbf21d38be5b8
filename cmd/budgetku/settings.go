package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"budgetku/internal/cli"
	"budgetku/internal/core"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				printSettings(cmd.OutOrStdout(), app.Store.Settings())
				return nil
			})
		},
	}
	cmd.AddCommand(settingsCurrencyCmd())
	cmd.AddCommand(settingsPeriodCmd())
	cmd.AddCommand(settingsNotifyCmd())
	return cmd
}

func printSettings(w io.Writer, s core.Settings) {
	currency := s.Currency
	if currency == "" {
		currency = cli.SubtleStyle.Render("(not set)")
	}
	onOff := func(b bool) string {
		if b {
			return cli.SuccessStyle.Render("on")
		}
		return cli.SubtleStyle.Render("off")
	}
	fmt.Fprintln(w, cli.BoxStyle.Render(strings.Join([]string{
		cli.TitleStyle.Render("Settings"),
		"Currency:             " + currency,
		"Period:               " + string(s.Period),
		"Daily reminder:       " + onOff(s.Notifications.DailyReminder),
		"Overspending warning: " + onOff(s.Notifications.OverspendingWarning),
		"Weekly report:        " + onOff(s.Notifications.WeeklyReport),
	}, "\n")))
}

func settingsCurrencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "currency <code>",
		Short:     "Set the display currency",
		Args:      cobra.ExactArgs(1),
		ValidArgs: core.SupportedCurrencies,
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				if !slices.Contains(core.SupportedCurrencies, code) {
					fmt.Fprintln(cmd.ErrOrStderr(), cli.WarningStyle.Render(
						fmt.Sprintf("%s is not one of %s; amounts will use a generic format", code, strings.Join(core.SupportedCurrencies, ", "))))
				}
				app.Store.SetCurrency(code)
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render("Currency set to "+code))
				return nil
			})
		},
	}
}

func settingsPeriodCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "period <day|week|month>",
		Short:     "Set the default period window",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(core.PeriodDay), string(core.PeriodWeek), string(core.PeriodMonth)},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := core.ParsePeriod(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				if err := app.Store.SetSelectedPeriod(p); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render("Period set to "+string(p)))
				return nil
			})
		},
	}
}

func settingsNotifyCmd() *cobra.Command {
	var daily, overspending, weekly bool

	cmd := &cobra.Command{
		Use:     "notify",
		Short:   "Toggle notifications",
		Example: `  budgetku settings notify --weekly=true --daily=false`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var patch core.NotificationSettingsPatch
			flags := cmd.Flags()
			if flags.Changed("daily") {
				patch.DailyReminder = &daily
			}
			if flags.Changed("overspending") {
				patch.OverspendingWarning = &overspending
			}
			if flags.Changed("weekly") {
				patch.WeeklyReport = &weekly
			}
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				app.Store.UpdateNotificationSettings(patch)
				printSettings(cmd.OutOrStdout(), app.Store.Settings())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&daily, "daily", false, "daily spending reminder at 20:00")
	cmd.Flags().BoolVar(&overspending, "overspending", false, "warn when a month passes 90% of its budget")
	cmd.Flags().BoolVar(&weekly, "weekly", false, "weekly report on Monday at 09:00")
	return cmd
}
