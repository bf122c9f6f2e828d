package middleware

import (
	"log/slog"

	"github.com/m3rciful/boardbot/core/logger"
	tghelpers "github.com/m3rciful/boardbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// IsAdmin reports whether the sender of c is the configured admin.
// Without a configured admin nobody is.
func IsAdmin(c tele.Context, adminID int64) bool {
	if adminID == 0 || c == nil || c.Sender() == nil {
		return false
	}
	return c.Sender().ID == adminID
}

// AdminOnlyMiddleware lets only the admin reach downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if IsAdmin(c, opts.AdminID) {
				return next(c)
			}
			attrs := []slog.Attr{slog.String("status", "rejected"), slog.String("reason", "not_admin")}
			if u := c.Sender(); u != nil {
				attrs = append(attrs, slog.Int64("user_id", u.ID))
			}
			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "access.denied", attrs...)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
