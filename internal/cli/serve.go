package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fsdevblog/shortlinks/internal/app"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the storage and run the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, conf)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, *conf, logger)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.WithError(closeErr).Error("close storage")
		}
	}()

	logger.WithField("db", conf.DBType).Info("Storage ready")
	if err = a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err //nolint:wrapcheck
	}
	return nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the storage schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err = app.Migrate(cmd.Context(), *conf); err != nil {
				return err //nolint:wrapcheck
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s storage\n", conf.DBType)
			return nil
		},
	}
}
