package router

import (
	"strings"
	"time"

	tg "github.com/m3rciful/boardbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for text/document updates.
type TextOptions struct {
	AdminID         int64
	OnAdminReject   tele.HandlerFunc
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// FirstWord returns the leading token of a message, which selects the command
// for text aliases such as "!등록 가이아, 루트".
func FirstWord(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// TextRoutes resolves plain text messages whose first word is a command alias
// and hands everything else to the fallbacks.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	cmdOpts := CommandRouteOptions{AdminID: opts.AdminID, OnAdminReject: opts.OnAdminReject}

	handler := func(c tele.Context) error {
		start := time.Now()
		word := FirstWord(c.Text())

		if reg != nil && word != "" && !strings.HasPrefix(word, "/") {
			if key, cmd, ok := reg.LookupCommand(word); ok && cmd.Handler != nil {
				return handleWithSummary(c, normalizeHandlerName(key), start, "", "", func() error {
					return guarded(cmd, cmdOpts)(c)
				})
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	docHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.UnknownDocument != nil {
			return handleWithSummary(c, "unexpected_document", start, "", "", func() error {
				return opts.UnknownDocument(c)
			})
		}
		logHandlerSummary(c, "unexpected_document", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(handler)},
		{Endpoint: tele.OnDocument, Handler: wrap(docHandler)},
	}
}
