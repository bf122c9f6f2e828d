package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/m3rciful/boardbot/core/bootstrap"
	corecmd "github.com/m3rciful/boardbot/core/cmd"
	coreconfig "github.com/m3rciful/boardbot/core/config"
	"github.com/m3rciful/boardbot/internal/bot"
)

// NewRunCmd starts the bot and blocks until SIGINT or SIGTERM.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the Telegram bot",
		RunE:  runBot,
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	return corecmd.Run(corecmd.Options{
		ConfigPath:        configPath,
		ConfigEnvVar:      configEnvVar,
		DefaultConfigPath: defaultConfigPath,
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return coreconfig.Load(path)
		},
		Bootstrap: bootstrapApp,
	})
}

// app closes the bot before the database it may be using.
type app struct {
	*bot.App
	infra *bootstrap.Result
}

func (a *app) Close() error {
	return errors.Join(a.App.Close(), a.infra.Close())
}

func bootstrapApp(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg := carrier.CoreConfig()
	infra, err := bootstrap.Run(ctx, bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}
	b, err := bot.New(ctx, cfg, infra.DB)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	return &app{App: b, infra: infra}, nil
}
