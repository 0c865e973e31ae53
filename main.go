package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"procurely/common"
	"procurely/database"
	"procurely/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:          "procurely",
		Short:        "Procurement company website API and back office",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve, newMigrateCmd(), newCreateAdminCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = zap.L().Sync() }()

			if err := cfg.RequireSessionSecret(); err != nil {
				return err
			}

			stores, err := store.NewStores(db)
			if err != nil {
				return err
			}
			if err := seed(cmd.Context(), cfg, stores); err != nil {
				return err
			}

			router := newRouter(cfg, stores, zap.L())

			zap.L().Info("starting server", zap.String("port", cfg.Port))
			return router.Run(":" + cfg.Port)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := bootstrap()
			return err
		},
	}
}

func newCreateAdminCmd() *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account if none exists for the email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}

			stores, err := store.NewStores(db)
			if err != nil {
				return err
			}

			created, err := database.EnsureAdmin(cmd.Context(), stores, email, name, password)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists\n", email)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin e-mail address")
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// bootstrap loads configuration, installs the global logger, then opens and
// migrates the database.
func bootstrap() (*common.Config, *gorm.DB, error) {
	cfg, err := common.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	log, err := common.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zap.ReplaceGlobals(log)

	db, err := common.ConnectDb(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	if err := database.RunMigrations(db); err != nil {
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	return cfg, db, nil
}

func seed(ctx context.Context, cfg *common.Config, stores *store.Stores) error {
	if cfg.AdminEmail != "" {
		if _, err := database.EnsureAdmin(ctx, stores, cfg.AdminEmail, cfg.AdminName, cfg.AdminPassword); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	if cfg.SettingsSeed != "" {
		f, err := database.LoadSettingsFile(cfg.SettingsSeed)
		if err != nil {
			return err
		}
		if _, err := database.SeedSettings(ctx, stores, f); err != nil {
			return err
		}
	}
	return nil
}
