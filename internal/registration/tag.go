package registration

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ChoiceSeparator joins the fields of an encoded choice payload.
const ChoiceSeparator = "|"

// PromptTag identifies which prompt a selection answers.
type PromptTag struct {
	Kind      Field
	SessionID string
	Index     int
}

// ErrMalformedChoice is returned for payloads that do not decode into a tag and value.
var ErrMalformedChoice = errors.New("registration: malformed choice payload")

// EncodeChoice renders "kind|session|index|value". It stays short whatever
// the game name is, which keeps it inside Telegram's callback data limit.
func EncodeChoice(tag PromptTag, value int) string {
	return strings.Join([]string{
		string(tag.Kind),
		tag.SessionID,
		strconv.Itoa(tag.Index),
		strconv.Itoa(value),
	}, ChoiceSeparator)
}

// ParseChoice decodes a payload produced by EncodeChoice.
func ParseChoice(payload string) (PromptTag, int, error) {
	return ParseChoiceParts(strings.Split(payload, ChoiceSeparator))
}

// ParseChoiceParts decodes an already split payload.
func ParseChoiceParts(parts []string) (PromptTag, int, error) {
	if len(parts) != 4 {
		return PromptTag{}, 0, fmt.Errorf("%w: want 4 fields, got %d", ErrMalformedChoice, len(parts))
	}
	kind := Field(strings.TrimSpace(parts[0]))
	if !kind.Valid() {
		return PromptTag{}, 0, fmt.Errorf("%w: unknown kind %q", ErrMalformedChoice, parts[0])
	}
	index, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || index < 0 {
		return PromptTag{}, 0, fmt.Errorf("%w: bad index %q", ErrMalformedChoice, parts[2])
	}
	value, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return PromptTag{}, 0, fmt.Errorf("%w: bad value %q", ErrMalformedChoice, parts[3])
	}
	return PromptTag{Kind: kind, SessionID: strings.TrimSpace(parts[1]), Index: index}, value, nil
}
