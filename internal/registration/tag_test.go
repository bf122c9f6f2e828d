package registration

import (
	"errors"
	"reflect"
	"testing"
)

func TestEncodeParseChoice(t *testing.T) {
	tag := PromptTag{Kind: AwaitingMax, SessionID: "AbC123xyz0", Index: 3}
	payload := EncodeChoice(tag, 7)
	if payload != "max|AbC123xyz0|3|7" {
		t.Fatalf("payload = %q", payload)
	}
	got, value, err := ParseChoice(payload)
	if err != nil {
		t.Fatalf("ParseChoice: %v", err)
	}
	if got != tag || value != 7 {
		t.Fatalf("got %+v %d", got, value)
	}
}

func TestParseChoiceRejectsGarbage(t *testing.T) {
	for _, payload := range []string{
		"",
		"min|sid|0",
		"mid|sid|0|3",
		"min|sid|-1|3",
		"min|sid|x|3",
		"max|sid|0|three",
	} {
		if _, _, err := ParseChoice(payload); !errors.Is(err, ErrMalformedChoice) {
			t.Errorf("ParseChoice(%q) err = %v", payload, err)
		}
	}
}

func TestParseGameNames(t *testing.T) {
	cases := map[string][]string{
		"가이아, 루트":          {"가이아", "루트"},
		" Gaia ,, Root , ": {"Gaia", "Root"},
		"Root, Root":        {"Root", "Root"},
		" , ,":              nil,
		"":                  nil,
	}
	for raw, want := range cases {
		if got := ParseGameNames(raw); !reflect.DeepEqual(got, want) {
			t.Errorf("ParseGameNames(%q) = %#v, want %#v", raw, got, want)
		}
	}
}
