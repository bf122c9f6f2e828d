// Package bot wires the catalog and the registration wizard to Telegram.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	coreconfig "github.com/m3rciful/boardbot/core/config"
	"github.com/m3rciful/boardbot/core/logger"
	coretelegram "github.com/m3rciful/boardbot/core/telegram"
	"github.com/m3rciful/boardbot/core/telegram/commands"
	"github.com/m3rciful/boardbot/core/telegram/router"
	"github.com/m3rciful/boardbot/core/telegram/ui"
	"github.com/m3rciful/boardbot/internal/catalog"
	"github.com/m3rciful/boardbot/internal/events"
	"github.com/m3rciful/boardbot/internal/registration"

	tele "gopkg.in/telebot.v4"
)

// App owns the long-lived collaborators of the bot and closes them on shutdown.
type App struct {
	cfg      *coreconfig.Config
	store    catalog.Store
	table    registration.Table
	service  *registration.Service
	gateway  *Gateway
	handlers *handlers
	fallback ui.FallbackProvider

	closers []func() error
}

// New builds the catalog store, session table and wizard service from cfg.
// db is required only for the postgres catalog backend.
func New(ctx context.Context, cfg *coreconfig.Config, db *sqlx.DB) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bot: nil config")
	}
	var closers []func() error
	fail := func(err error) (*App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	store, err := OpenStore(ctx, cfg, db)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, store.Close)

	table, tableClose, err := buildTable(ctx, cfg.Sessions)
	if err != nil {
		return fail(err)
	}
	if tableClose != nil {
		closers = append(closers, tableClose)
	}

	app := Assemble(cfg, store, table)
	app.closers = closers
	return app, nil
}

// Assemble wires an App around an existing store and table.
func Assemble(cfg *coreconfig.Config, store catalog.Store, table registration.Table) *App {
	gw := NewGateway(nil)
	svc := registration.NewService(table, store, gw)
	return &App{
		cfg:     cfg,
		store:   store,
		table:   table,
		service: svc,
		gateway: gw,
		handlers: &handlers{
			store:    store,
			service:  svc,
			pageSize: cfg.Catalog.PageSize,
		},
		fallback: fallbacks{},
	}
}

// OpenStore opens the configured catalog backend wrapped with event publishing.
func OpenStore(ctx context.Context, cfg *coreconfig.Config, db *sqlx.DB) (catalog.Store, error) {
	var base catalog.Store
	switch cfg.Catalog.Backend {
	case coreconfig.CatalogPostgres:
		if db == nil {
			return nil, errors.New("bot: postgres catalog without a database handle")
		}
		base = catalog.NewPostgresStore(db)
	default:
		fs := catalog.NewFileStore(cfg.Catalog.Path)
		// create the file up front so a bad path fails at startup
		if _, err := fs.LoadAll(ctx); err != nil {
			return nil, fmt.Errorf("bot: open catalog: %w", err)
		}
		base = fs
	}

	var pub events.Publisher = &events.NoopPublisher{}
	if cfg.Events.NATSURL != "" {
		np, err := events.NewNATSPublisher(cfg.Events.NATSURL)
		if err != nil {
			_ = base.Close()
			return nil, fmt.Errorf("bot: events: %w", err)
		}
		pub = np
	}
	logger.LogEvent(ctx, logger.SVCCatalog, slog.LevelInfo, "catalog.open",
		slog.String("backend", cfg.Catalog.Backend),
		slog.Bool("events", cfg.Events.NATSURL != ""),
	)
	return events.NewPublishingStore(base, pub, cfg.Events.SubjectPrefix), nil
}

func idleTimeout(s coreconfig.SessionsConfig) time.Duration {
	if s.IdleTimeoutMinutes <= 0 {
		return 0
	}
	return time.Duration(s.IdleTimeoutMinutes) * time.Minute
}

func buildTable(ctx context.Context, s coreconfig.SessionsConfig) (registration.Table, func() error, error) {
	if s.Backend != coreconfig.SessionsRedis {
		return registration.NewMemoryTable(idleTimeout(s)), nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     s.Redis.Addr,
		Password: s.Redis.Password,
		DB:       s.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("bot: redis ping %s: %w", s.Redis.Addr, err)
	}
	return registration.NewRedisTable(client, s.Redis.KeyPrefix, idleTimeout(s)), client.Close, nil
}

// Service exposes the wizard, mainly for tests and diagnostics.
func (a *App) Service() *registration.Service { return a.service }

// Register adds the commands and callbacks of the bot to reg.
func (a *App) Register(reg *coretelegram.Registry) error {
	h := a.handlers
	reg.RegisterCommand("/start", commands.Command{Handler: h.help, Description: "도움말", Hidden: true})
	reg.RegisterCommand("/help", commands.Command{Handler: h.help, Description: "도움말"})
	reg.RegisterCommand("/register", commands.Command{
		Handler:     h.register,
		Description: "게임 등록 (쉼표로 여러 개)",
		Usage:       "/register 게임1, 게임2",
		Aliases:     []string{"!등록"},
	})
	reg.RegisterCommand("/list", commands.Command{
		Handler:     h.list,
		Description: "등록된 게임 목록",
		Usage:       "/list [페이지]",
		Aliases:     []string{"!목록"},
	})
	reg.RegisterCommand("/delete", commands.Command{
		Handler:     h.remove,
		Description: "게임 삭제",
		Usage:       "/delete 게임명",
		Aliases:     []string{"!삭제"},
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     h.cancel,
		Description: "진행 중인 등록 취소",
		Aliases:     []string{"!취소"},
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     h.statsReport,
		Description: "봇 상태",
		AdminOnly:   true,
	})

	reg.SetCallbackNotFound(a.fallback.UnknownCallback())
	return errors.Join(
		reg.RegisterCallback(uniqueChoice, h.choice),
		reg.RegisterCallback(uniqueCancel, h.cancelButton),
		reg.RegisterCallback(uniquePage, h.listPage),
	)
}

// TelegramRunOptions describes how the core runtime should host the bot.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	if err := a.Register(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}
	adminID := a.cfg.Telegram.AdminID
	rejectAdmin := ui.Reply(msgAdminOnly)

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, rateLimited),
		RoutesFunc: func(reg *coretelegram.Registry) []coretelegram.Route {
			routes := router.CommandRoutes(reg, router.CommandRouteOptions{
				AdminID:       adminID,
				OnAdminReject: rejectAdmin,
			})
			routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{KeepSpinner: true}))
			routes = append(routes, router.TextRoutes(reg, router.TextOptions{
				AdminID:         adminID,
				OnAdminReject:   rejectAdmin,
				UnknownText:     a.fallback.UnknownText(),
				UnknownDocument: a.fallback.UnknownDocument(),
			})...)
			return routes
		},
		OnStart: a.onStart,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt coretelegram.Runtime) error {
	if rt.Bot != nil {
		a.gateway.Attach(rt.Bot)
	}
	if rt.Dispatcher != nil {
		a.handlers.stats = rt.Dispatcher.Stats
	}
	if mt, ok := a.table.(*registration.MemoryTable); ok {
		mt.StartJanitor(ctx, time.Duration(a.cfg.Sessions.SweepIntervalSeconds)*time.Second)
	}
	return nil
}

func rateLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: msgRateLimited})
	}
	return nil
}

// Close releases stores and connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
