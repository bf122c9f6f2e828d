package callbacks

import (
	"errors"
	"strconv"
	"testing"

	tele "gopkg.in/telebot.v4"
)

type cbContext struct {
	tele.Context
	cb *tele.Callback
}

func (c cbContext) Callback() *tele.Callback { return c.cb }

func TestParseRawData(t *testing.T) {
	unique, payload := Parse(&tele.Callback{Data: "\freg|min|abc|0|4"})
	if unique != "reg" || payload != "min|abc|0|4" {
		t.Fatalf("got %q %q", unique, payload)
	}
}

func TestParseHandledData(t *testing.T) {
	unique, payload := Parse(&tele.Callback{Unique: "list", Data: "3"})
	if unique != "list" || payload != "3" {
		t.Fatalf("got %q %q", unique, payload)
	}
}

func TestParseWithoutPayload(t *testing.T) {
	unique, payload := Parse(&tele.Callback{Data: "\fnoop"})
	if unique != "noop" || payload != "" {
		t.Fatalf("got %q %q", unique, payload)
	}
	if u, p := Parse(nil); u != "" || p != "" {
		t.Fatalf("nil callback parsed to %q %q", u, p)
	}
}

func TestPayloadHelpers(t *testing.T) {
	c := cbContext{cb: &tele.Callback{Data: "\flist| 2 "}}
	n, err := PayloadInt(c)
	if err != nil || n != 2 {
		t.Fatalf("PayloadInt = %d, %v", n, err)
	}
	if Key(c) != "list" {
		t.Fatalf("Key = %q", Key(c))
	}

	empty := cbContext{cb: &tele.Callback{Data: "\flist"}}
	if _, err := PayloadParts(empty, "|"); !errors.Is(err, strconv.ErrSyntax) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	parts, err := PayloadParts(cbContext{cb: &tele.Callback{Unique: "reg", Data: "max|s1|1|4"}}, "|")
	if err != nil || len(parts) != 4 || parts[3] != "4" {
		t.Fatalf("PayloadParts = %v, %v", parts, err)
	}
}
