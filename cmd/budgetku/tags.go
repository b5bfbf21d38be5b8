package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"budgetku/internal/cli"
)

func tagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage tags",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tags with their colors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				tags := app.Store.Tags()
				rows := make([][]string, 0, len(tags))
				for _, name := range tags {
					color := app.Store.TagColor(name)
					rows = append(rows, []string{cli.Swatch(color) + " " + name, color})
				}
				return cli.Table(cmd.OutOrStdout(), []string{"Tag", "Color"}, rows)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				color, err := app.Store.AddTag(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", cli.SuccessStyle.Render("Added tag"), cli.Swatch(color), args[0])
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a tag and every transaction using it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				ok, err := app.Store.EditTag(args[0], args[1])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("tag %q not found", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("Renamed %s to %s", args[0], args[1])))
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a tag and strip it from transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(_ context.Context, app *cli.App) error {
				if !app.Store.DeleteTag(args[0]) {
					return fmt.Errorf("tag %q not found", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render("Deleted tag "+args[0]))
				return nil
			})
		},
	})
	return cmd
}
