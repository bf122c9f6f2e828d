// Package commands declares the metadata attached to registered bot commands.
package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command is a slash command plus the text aliases that reach the same handler.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Usage is shown by help output, e.g. "/list [page]".
	Usage     string
	AdminOnly bool
	Hidden    bool
	// Aliases are matched against the first word of plain text messages ("!목록").
	Aliases []string
}

// Payload returns the message text after the command word. It works for
// slash commands and aliases alike, where telebot only fills the payload
// for the former.
func Payload(c tele.Context) string {
	if c == nil {
		return ""
	}
	return TrimCommand(c.Text())
}

// TrimCommand drops the first word of text and the whitespace around the rest.
func TrimCommand(text string) string {
	text = strings.TrimSpace(text)
	i := strings.IndexFunc(text, isSpace)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(text[i:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
