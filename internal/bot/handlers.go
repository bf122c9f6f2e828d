package bot

import (
	"errors"
	"log/slog"

	"github.com/m3rciful/boardbot/core/logger"
	"github.com/m3rciful/boardbot/core/telegram/callbacks"
	"github.com/m3rciful/boardbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/boardbot/core/telegram/helpers"
	"github.com/m3rciful/boardbot/core/telegram/keyboard"
	"github.com/m3rciful/boardbot/core/telegram/sender"
	"github.com/m3rciful/boardbot/internal/catalog"
	"github.com/m3rciful/boardbot/internal/registration"

	tele "gopkg.in/telebot.v4"
)

// handlers holds the command and callback endpoints of the bot.
type handlers struct {
	store    catalog.Store
	service  *registration.Service
	pageSize int
	// stats reports dispatcher counters; nil before the bot starts.
	stats func() sender.Stats
}

func (h *handlers) help(c tele.Context) error {
	return tghelpers.SendHTML(c, helpText)
}

// register starts a wizard for the comma separated names after the command.
func (h *handlers) register(c tele.Context) error {
	names := registration.ParseGameNames(commands.Payload(c))
	if len(names) == 0 {
		return tghelpers.SendHTML(c, msgNoNames)
	}
	owner := registration.Owner{UserID: tghelpers.SenderID(c), ChatID: tghelpers.ChatID(c)}
	if _, err := h.service.Begin(tghelpers.BuildContext(c), owner, names); err != nil {
		if errors.Is(err, registration.ErrNoGameNames) {
			return tghelpers.SendHTML(c, msgNoNames)
		}
		_ = tghelpers.SendText(c, msgInternal)
		return err
	}
	return nil
}

func (h *handlers) list(c tele.Context) error {
	return h.showPage(c, parsePage(firstArg(commands.Payload(c))), false)
}

// listPage answers the pager buttons under a list reply by editing it in place.
func (h *handlers) listPage(c tele.Context) error {
	n, err := callbacks.PayloadInt(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: msgUnknownButton})
	}
	_ = c.Respond()
	return h.showPage(c, n, true)
}

func (h *handlers) showPage(c tele.Context, number int, edit bool) error {
	ctx := tghelpers.BuildContext(c)
	entries, err := h.store.LoadAll(ctx)
	if err != nil {
		_ = tghelpers.SendText(c, msgInternal)
		return err
	}
	if len(entries) == 0 {
		return tghelpers.SendText(c, msgEmptyCatalog)
	}

	page, err := catalog.Paginate(entries, number, h.pageSize)
	var rangeErr *catalog.PageRangeError
	if errors.As(err, &rangeErr) {
		logger.LogEvent(ctx, logger.SVCCatalog, slog.LevelDebug, "catalog.page",
			slog.String("status", "rejected"),
			slog.Int("page", rangeErr.Page),
			slog.Int("pages", rangeErr.Total),
			slog.String("err_code", rangeErr.Code()),
		)
		return tghelpers.SendText(c, msgPageRange(rangeErr.Total))
	}
	if err != nil {
		return err
	}

	text := renderPage(page)
	markup := pagerMarkup(page)
	if edit {
		return tghelpers.EditOrSendHTML(c, text, markup)
	}
	return tghelpers.SendHTML(c, text, markup)
}

func pagerMarkup(p catalog.Page) *tele.ReplyMarkup {
	row := keyboard.Pager(uniquePage, p.Number, p.Total, labelPrev, labelNext)
	if len(row) == 0 {
		return nil
	}
	return keyboard.InlineButtonsRows(row)
}

// remove deletes the first entry named exactly like the text after the command.
func (h *handlers) remove(c tele.Context) error {
	name := commands.Payload(c)
	if name == "" {
		return tghelpers.SendHTML(c, msgNoDeleteName)
	}
	removed, err := h.store.RemoveByName(tghelpers.BuildContext(c), name)
	if err != nil {
		_ = tghelpers.SendText(c, msgInternal)
		return err
	}
	if !removed {
		return tghelpers.SendHTML(c, msgNotFound(name))
	}
	return tghelpers.SendHTML(c, msgDeleted(name))
}

func (h *handlers) cancel(c tele.Context) error {
	ok, err := h.service.Abandon(tghelpers.BuildContext(c), tghelpers.SenderID(c))
	if err != nil {
		return err
	}
	if !ok {
		return tghelpers.SendText(c, msgNothingToStop)
	}
	return tghelpers.SendText(c, msgCancelled)
}

// cancelButton handles the cancel row of a prompt. Its payload is the session id.
func (h *handlers) cancelButton(c tele.Context) error {
	ok, err := h.service.AbandonSession(tghelpers.BuildContext(c), tghelpers.SenderID(c), callbacks.Payload(c))
	if err != nil {
		_ = c.Respond()
		return err
	}
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: msgStaleChoice})
	}
	_ = c.Respond()
	return tghelpers.EditOrSendHTML(c, msgCancelled)
}

// choice feeds a pressed player-count button into the wizard. Presses on
// prompts the wizard no longer waits for only get a short notice.
func (h *handlers) choice(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	parts, err := callbacks.PayloadParts(c, registration.ChoiceSeparator)
	var (
		tag   registration.PromptTag
		value int
	)
	if err == nil {
		tag, value, err = registration.ParseChoiceParts(parts)
	}
	if err != nil {
		logger.LogEvent(ctx, logger.SVCRegistration, slog.LevelDebug, "selection.malformed",
			slog.String("outcome", "rejected"),
			slog.String("payload", logger.SanitizeLimit(callbacks.Payload(c), 64)),
		)
		return c.Respond(&tele.CallbackResponse{Text: msgStaleChoice})
	}

	out, err := h.service.HandleSelection(ctx, tghelpers.SenderID(c), tag, value)
	if err != nil {
		// the failure reply already went out; the keyboard stays for a retry
		_ = c.Respond()
		return err
	}
	if out.Status == registration.Stale {
		return c.Respond(&tele.CallbackResponse{Text: msgStaleChoice})
	}
	_ = c.Respond()

	var game string
	if out.Session != nil && tag.Index < len(out.Session.Queue) {
		game = out.Session.Queue[tag.Index]
	}
	return tghelpers.EditOrSendHTML(c, msgSelected(game, tag.Kind, value))
}

// statsReport is admin only: catalog size, wizards in flight and send counters.
func (h *handlers) statsReport(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	entries, err := h.store.LoadAll(ctx)
	if err != nil {
		return err
	}
	active, err := h.service.Active(ctx)
	if err != nil {
		return err
	}
	var st sender.Stats
	if h.stats != nil {
		st = h.stats()
	}
	return tghelpers.SendText(c, msgStats(len(entries), active, st.Sent, st.Failed))
}
