package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront API server and admin tooling",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createSuperAdminCmd)
	rootCmd.AddCommand(inviteAdminCmd)
}

// boot loads and validates config, installs the logger and opens the database.
func boot(ctx context.Context) (context.Context, config.Config, *gorm.DB, error) {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx = logging.IntoContext(ctx, logger)

	if err := cfg.Validate(); err != nil {
		return ctx, cfg, nil, err
	}

	gdb, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return ctx, cfg, nil, err
	}
	return ctx, cfg, gdb, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, _, gdb, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		if err := db.Migrate(ctx, gdb); err != nil {
			return err
		}
		logging.FromContext(ctx).Info("migrations_applied")
		return nil
	},
}
