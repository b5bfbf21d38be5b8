package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"budgetku/internal/cli"
	"budgetku/internal/config"
	"budgetku/internal/log"
)

var (
	version = "dev"

	cfg    *config.Config
	logger *log.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "budgetku",
		Short: "Personal budget tracker",
		Long: `budgetku tracks income and expenses, per-tag monthly budgets and
spending analytics. Run "budgetku serve" for the JSON API or use the
subcommands to work on the local data directly.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}

	root.PersistentFlags().String("log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	root.PersistentFlags().String("data-backend", "", "override DATA_BACKEND (memory, file, sqlite)")

	root.AddCommand(serveCmd())
	root.AddCommand(txCmd())
	root.AddCommand(budgetCmd())
	root.AddCommand(tagsCmd())
	root.AddCommand(analyticsCmd())
	root.AddCommand(settingsCmd())
	root.AddCommand(versionCmd())
	return root
}

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		cli.Fatal(err)
	}
}

// initConfig loads and validates the configuration, applies flag overrides
// and sets up logging. Only serve logs to stdout; the other commands keep
// stdout for their output and log warnings to stderr.
func initConfig(cmd *cobra.Command, _ []string) error {
	c := config.Load()
	if v, _ := cmd.Flags().GetString("data-backend"); v != "" {
		c.DataBackend = strings.ToLower(v)
	}
	out := os.Stdout
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		c.LogLevel = v
	} else if cmd.Name() != "serve" {
		c.LogLevel = "warn"
	}
	if cmd.Name() != "serve" {
		out = os.Stderr
	}

	if err := c.Validate(); err != nil {
		return err
	}
	l, err := cli.SetupLogger(c, out)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	cfg, logger = c, l
	return nil
}

// withApp bootstraps the store on the configured backend, runs fn and
// flushes the snapshot before returning.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *cli.App) error) (err error) {
	ctx := cmd.Context()
	if cfg.DataBackend == config.BackendMemory {
		fmt.Fprintln(cmd.ErrOrStderr(), cli.WarningStyle.Render("memory backend: changes are discarded on exit"))
	}

	app, err := cli.Bootstrap(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if cerr := app.Close(closeCtx); cerr != nil && err == nil {
			err = fmt.Errorf("failed to save: %w", cerr)
		}
	}()
	return fn(ctx, app)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "budgetku", version)
		},
	}
}
