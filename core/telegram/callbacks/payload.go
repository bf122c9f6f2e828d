// Package callbacks decodes inline button data produced by telebot.
//
// Telebot encodes a button as "\f<unique>|<payload>". When a handler is
// registered for the unique name it strips the prefix and fills
// Callback.Unique; the generic OnCallback endpoint receives the raw form.
package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Parse returns the unique name and payload of a callback in either form.
func Parse(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	unique, payload, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(unique), payload
}

// Key returns the unique name of the current callback.
func Key(c tele.Context) string {
	k, _ := Parse(c.Callback())
	return k
}

// Payload returns the data after the unique name.
func Payload(c tele.Context) string {
	_, p := Parse(c.Callback())
	return p
}

// PayloadParts splits the payload using sep. An empty payload is a syntax error.
func PayloadParts(c tele.Context, sep string) ([]string, error) {
	p := Payload(c)
	if p == "" {
		return nil, strconv.ErrSyntax
	}
	return strings.Split(p, sep), nil
}

// PayloadInt parses the payload as a decimal int.
func PayloadInt(c tele.Context) (int, error) {
	return strconv.Atoi(strings.TrimSpace(Payload(c)))
}
