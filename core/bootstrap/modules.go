package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/boardbot/core/logger"
)

// Seeder loads reference data once infrastructure is up.
type Seeder interface {
	Name() string
	Seed(ctx context.Context) (int, error)
}

// SeederFunc adapts a named function to the Seeder interface.
type SeederFunc struct {
	Label string
	Fn    func(ctx context.Context) (int, error)
}

// Name identifies the seeder in logs.
func (f SeederFunc) Name() string { return f.Label }

// Seed executes the underlying function.
func (f SeederFunc) Seed(ctx context.Context) (int, error) { return f.Fn(ctx) }

// RunSeeders runs seeders in order and stops at the first failure.
// It returns the total number of records written.
func RunSeeders(ctx context.Context, seeders ...Seeder) (int, error) {
	total := 0
	for _, s := range seeders {
		if s == nil {
			continue
		}
		n, err := s.Seed(ctx)
		if err != nil {
			logger.LogEvent(ctx, logger.DB, slog.LevelError, "seed",
				slog.String("status", "fail"),
				slog.String("name", s.Name()),
				slog.String("err", err.Error()),
			)
			return total, fmt.Errorf("bootstrap: seeder %s: %w", s.Name(), err)
		}
		total += n
		logger.LogEvent(ctx, logger.DB, slog.LevelInfo, "seed",
			slog.String("status", "ok"),
			slog.String("name", s.Name()),
			slog.Int("count", n),
		)
	}
	return total, nil
}
