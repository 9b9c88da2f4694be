package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/gradesync/pkg/config"
	"github.com/noah-isme/gradesync/pkg/database"
	appErrors "github.com/noah-isme/gradesync/pkg/errors"
	"github.com/noah-isme/gradesync/pkg/logger"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	envFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func (a *app) openDB() (*sqlx.DB, error) {
	db, err := database.Open(a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "gradesync",
		Short:         "Synchronise portal rosters and teacher gradebooks into the school database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(a.envFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logr, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			a.cfg = cfg
			a.logger = logr
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Env file read before the environment")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ExitUsage, "invalid flags")
	})

	cmd.AddCommand(newBootstrapCmd(a))
	cmd.AddCommand(newProvisionCmd(a))
	cmd.AddCommand(newImportCmd(a))
	cmd.AddCommand(newExportCmd(a))
	cmd.AddCommand(newReportCmd(a))
	return cmd
}

// Execute runs the CLI and exits with the code mapped from the returned error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		code := appErrors.ExitCode(err)
		fmt.Fprintln(os.Stderr, "Error:", err.Error())
		stop()
		os.Exit(code)
	}
}
