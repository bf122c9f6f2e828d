package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/boardbot/core/logger"
	tg "github.com/m3rciful/boardbot/core/telegram"
	"github.com/m3rciful/boardbot/core/telegram/commands"
	"github.com/m3rciful/boardbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes binds every registered slash command with summary logging,
// panic recovery and the admin gate where required.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for key, def := range reg.Commands() {
		routes = append(routes, tg.Route{
			Endpoint: key,
			Handler:  wrap(summarized(key, guarded(def, opts))),
		})
	}

	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "wire.complete",
		slog.Int("commands", len(reg.Commands())),
		slog.Int("aliases", len(reg.Aliases())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}

func guarded(def commands.Command, opts CommandRouteOptions) tele.HandlerFunc {
	if !def.AdminOnly {
		return def.Handler
	}
	return middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})(def.Handler)
}

func summarized(key string, h tele.HandlerFunc) tele.HandlerFunc {
	name := normalizeHandlerName(key)
	return func(c tele.Context) error {
		return handleWithSummary(c, name, time.Now(), "", "", func() error { return h(c) })
	}
}
