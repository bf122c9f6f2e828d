package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m3rciful/boardbot/core/bootstrap"
	"github.com/m3rciful/boardbot/core/logger"
	"github.com/m3rciful/boardbot/internal/bot"
	"github.com/m3rciful/boardbot/internal/catalog"
)

// NewImportCmd appends a gameList.json file to the configured catalog.
func NewImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON game list into the configured catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "gameList.json", "JSON catalog file to import")
	return cmd
}

func runImport(cmd *cobra.Command, file string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	infra, err := bootstrap.Run(ctx, bootstrap.Options{Config: cfg})
	if err != nil {
		return err
	}
	defer logger.Shutdown()
	defer infra.Close()

	store, err := bot.OpenStore(ctx, cfg, infra.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := bootstrap.RunSeeders(ctx, bootstrap.SeederFunc{
		Label: "catalog.import",
		Fn: func(ctx context.Context) (int, error) {
			return catalog.ImportFile(ctx, store, file)
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d games from %s\n", n, file)
	return nil
}
