// Package ui declares the replies used when an update matches no handler.
package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider exposes handlers used when incoming updates
// cannot be mapped to commands, callbacks, or expected documents.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}

// Reply returns a handler that answers with a fixed text.
func Reply(text string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Send(text)
	}
}

// Toast returns a callback handler that shows text as a short notification.
func Toast(text string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: text})
	}
}

// Silent ignores the update.
func Silent() tele.HandlerFunc {
	return func(tele.Context) error { return nil }
}
