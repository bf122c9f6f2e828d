package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	coreconfig "github.com/m3rciful/boardbot/core/config"
	coredatabase "github.com/m3rciful/boardbot/core/database"
	"github.com/m3rciful/boardbot/core/logger"
)

// NewMigrateCmd applies the embedded Postgres migrations and exits.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the postgres catalog",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Catalog.Backend != coreconfig.CatalogPostgres {
		return fmt.Errorf("migrate: catalog.backend is %q, nothing to migrate", cfg.Catalog.Backend)
	}
	if err := logger.InitLogger(cfg); err != nil {
		return err
	}
	defer logger.Shutdown()

	if err := coredatabase.RunMigrations(cmd.Context(), cfg.Database); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}
