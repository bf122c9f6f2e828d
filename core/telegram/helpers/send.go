package helpers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/boardbot/core/logger"
	"github.com/m3rciful/boardbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

// Enqueue runs fn on the dispatcher, or inline when none is set or the queue refuses it.
func Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	return Enqueue(BuildContext(c), action, endpoint, run)
}

// ChatSender is the part of *tele.Bot used to message a chat outside a handler context.
type ChatSender interface {
	Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error)
}

// SendToChat delivers text to chatID through the dispatcher.
func SendToChat(ctx context.Context, bot ChatSender, chatID int64, action, text string, opts *tele.SendOptions) error {
	if bot == nil {
		return errors.New("telegram: nil bot")
	}
	return Enqueue(ctx, action, "sendMessage", func() error {
		var err error
		if opts != nil {
			_, err = bot.Send(tele.ChatID(chatID), text, opts)
		} else {
			_, err = bot.Send(tele.ChatID(chatID), text)
		}
		return err
	})
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendHTML sends a message with HTML parse mode and optional reply markup.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return SendText(c, text, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: firstMarkup(markup)})
}

// EditOrSendHTML edits the message behind a callback, or sends a new one when editing fails.
func EditOrSendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: firstMarkup(markup)}
	return sendAsync(c, "edit.html", "editMessageText", func() error {
		return c.EditOrSend(text, opts)
	})
}

func firstMarkup(markup []*tele.ReplyMarkup) *tele.ReplyMarkup {
	if len(markup) > 0 {
		return markup[0]
	}
	return nil
}
