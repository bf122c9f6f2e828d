package bot

import (
	"github.com/m3rciful/boardbot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// fallbacks keeps the bot quiet on chatter it does not understand; it shares
// group chats with people talking about other things.
type fallbacks struct{}

var _ ui.FallbackProvider = fallbacks{}

func (fallbacks) UnknownText() tele.HandlerFunc     { return ui.Silent() }
func (fallbacks) UnknownDocument() tele.HandlerFunc { return ui.Silent() }
func (fallbacks) UnknownCallback() tele.HandlerFunc { return ui.Toast(msgUnknownButton) }
