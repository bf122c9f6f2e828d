// Package commands implements the boardbot command line.
package commands

import (
	"github.com/spf13/cobra"

	corecmd "github.com/m3rciful/boardbot/core/cmd"
	coreconfig "github.com/m3rciful/boardbot/core/config"
)

const (
	configEnvVar      = "CONFIG_PATH"
	defaultConfigPath = "config.yaml"
)

var configPath string

// NewRootCmd creates the root command. Without a subcommand it runs the bot.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "boardbot",
		Short:         "Board game catalog bot for Telegram",
		Long:          `boardbot keeps a shared list of board games and registers new ones through an inline-keyboard wizard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBot,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (default $"+configEnvVar+" or "+defaultConfigPath+")")

	cmd.AddCommand(
		NewRunCmd(),
		NewMigrateCmd(),
		NewImportCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// loadConfig resolves the config path the same way the bot runner does.
func loadConfig() (*coreconfig.Config, error) {
	path, err := corecmd.ResolveConfigPath(configPath, configEnvVar, defaultConfigPath)
	if err != nil {
		return nil, err
	}
	return coreconfig.Load(path)
}
