package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/m3rciful/boardbot/core/logger"
	"github.com/m3rciful/boardbot/core/telegram/format"
	tghelpers "github.com/m3rciful/boardbot/core/telegram/helpers"
	"github.com/m3rciful/boardbot/core/telegram/keyboard"
	"github.com/m3rciful/boardbot/internal/registration"

	tele "gopkg.in/telebot.v4"
)

// Callback unique names owned by the bot.
const (
	uniqueChoice = "reg"
	uniqueCancel = "reg_cancel"
	uniquePage   = "list"
)

const choicesPerRow = 5

// ErrGatewayDetached is returned when a prompt is sent before the bot is attached.
var ErrGatewayDetached = errors.New("bot: gateway has no telegram client")

// Gateway delivers wizard prompts as inline keyboards. Sends are queued on
// the async dispatcher, so the wizard never waits for Telegram.
type Gateway struct {
	mu     sync.RWMutex
	client tghelpers.ChatSender
}

var _ registration.Gateway = (*Gateway)(nil)

// NewGateway returns a gateway that sends through client once attached.
func NewGateway(client tghelpers.ChatSender) *Gateway {
	return &Gateway{client: client}
}

// Attach sets the Telegram client, typically *tele.Bot at startup.
func (g *Gateway) Attach(client tghelpers.ChatSender) {
	g.mu.Lock()
	g.client = client
	g.mu.Unlock()
}

func (g *Gateway) sender() (tghelpers.ChatSender, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.client == nil {
		return nil, ErrGatewayDetached
	}
	return g.client, nil
}

// PresentChoices sends p as a message with one button per choice.
func (g *Gateway) PresentChoices(ctx context.Context, to registration.Target, p registration.Prompt) error {
	client, err := g.sender()
	if err != nil {
		return err
	}
	logger.LogEvent(ctx, logger.SVCRegistration, slog.LevelDebug, "prompt.present",
		slog.String("game", p.Game),
		slog.String("field", string(p.Tag.Kind)),
		slog.Int("cursor", p.Tag.Index),
		slog.Int("count", len(p.Choices)),
	)
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: promptMarkup(p)}
	return tghelpers.SendToChat(ctx, client, to.ChatID, "send.prompt", format.EmphasisHTML(p.Text), opts)
}

// Acknowledge reports a committed batch.
func (g *Gateway) Acknowledge(ctx context.Context, to registration.Target, registered int) error {
	client, err := g.sender()
	if err != nil {
		return err
	}
	return tghelpers.SendToChat(ctx, client, to.ChatID, "send.ack", msgRegistered(registered), nil)
}

// ReportFailure tells the owner the batch was not saved and can be retried.
func (g *Gateway) ReportFailure(ctx context.Context, to registration.Target, _ error) error {
	client, err := g.sender()
	if err != nil {
		return err
	}
	return tghelpers.SendToChat(ctx, client, to.ChatID, "send.failure", msgStoreFailure, nil)
}

// promptMarkup lays the choices out five per row with a cancel row below.
func promptMarkup(p registration.Prompt) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(p.Choices))
	for _, c := range p.Choices {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   c.Label,
			Unique: uniqueChoice,
			Data:   registration.EncodeChoice(p.Tag, c.Value),
		})
	}
	rows := keyboard.Rows(buttons, choicesPerRow)
	rows = append(rows, []keyboard.InlineBtn{keyboard.CancelButton(uniqueCancel, p.Tag.SessionID, labelCancel)})
	markup := keyboard.InlineButtonsRows(rows...)
	markup.Placeholder = p.Placeholder
	return markup
}
