package registration

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/m3rciful/boardbot/internal/catalog"
)

func testSession(t *testing.T, names ...string) *Session {
	t.Helper()
	s, err := newSession(Owner{UserID: 1, ChatID: 100}, names, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	return s
}

// answer builds the event a user pressing value on the current prompt would send.
func answer(s *Session, value int) Event {
	game, _ := s.Current()
	return Event{
		OwnerID: s.OwnerID,
		Tag:     PromptTag{Kind: s.Expected, SessionID: s.ID, Index: s.Cursor},
		Game:    game,
		Value:   value,
	}
}

func mustStep(t *testing.T, s *Session, ev Event) Outcome {
	t.Helper()
	out, err := Step(s, ev)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	return out
}

func choiceValues(p *Prompt) []int {
	out := make([]int, 0, len(p.Choices))
	for _, c := range p.Choices {
		out = append(out, c.Value)
	}
	return out
}

func TestNewSessionStartsAtMin(t *testing.T) {
	s := testSession(t, "Gaia", "Root")
	if s.Cursor != 0 || s.Expected != AwaitingMin || len(s.Completed) != 0 || s.PendingMin != nil {
		t.Fatalf("unexpected initial session: %+v", s)
	}
	if s.ID == "" {
		t.Fatal("session id not assigned")
	}
	if _, err := newSession(Owner{UserID: 1}, nil, time.Now()); !errors.Is(err, ErrNoGameNames) {
		t.Fatalf("expected ErrNoGameNames, got %v", err)
	}
}

func TestStepGaiaRootScenario(t *testing.T) {
	s := testSession(t, "Gaia", "Root")

	out := mustStep(t, s, answer(s, 3))
	if out.Status != Advanced || out.Prompt.Tag.Kind != AwaitingMax || out.Prompt.Game != "Gaia" {
		t.Fatalf("after Gaia min: %+v", out)
	}
	if got := choiceValues(out.Prompt); !reflect.DeepEqual(got, []int{3, 4, 5, 6, 7, 8, 9, 10}) {
		t.Fatalf("max choices = %v", got)
	}
	s = out.Session

	out = mustStep(t, s, answer(s, 5))
	if out.Status != Advanced || out.Prompt.Tag.Kind != AwaitingMin || out.Prompt.Game != "Root" {
		t.Fatalf("after Gaia max: %+v", out)
	}
	if got := choiceValues(out.Prompt); len(got) != 9 || got[0] != 2 || got[8] != 10 {
		t.Fatalf("min choices = %v", got)
	}
	s = out.Session
	if s.Cursor != 1 || len(s.Completed) != 1 || s.PendingMin != nil {
		t.Fatalf("session after first game: %+v", s)
	}

	s = mustStep(t, s, answer(s, 2)).Session
	out = mustStep(t, s, answer(s, 4))
	if out.Status != Completed {
		t.Fatalf("expected Completed, got %v", out.Status)
	}
	want := []catalog.Entry{
		{Name: "Gaia", MinPlayers: 3, MaxPlayers: 5, Players: "3~5"},
		{Name: "Root", MinPlayers: 2, MaxPlayers: 4, Players: "2~4"},
	}
	if !reflect.DeepEqual(out.Entries, want) {
		t.Fatalf("entries = %+v", out.Entries)
	}
}

func TestStepPromptPairsPerGame(t *testing.T) {
	names := []string{"a", "b", "c", "d"}
	s := testSession(t, names...)
	var prompts []Field
	for i := 0; ; i++ {
		out := mustStep(t, s, answer(s, 2))
		if out.Status == Completed {
			if i != 2*len(names)-1 {
				t.Fatalf("completed after %d events", i+1)
			}
			break
		}
		prompts = append(prompts, out.Prompt.Tag.Kind)
		if len(out.Session.Completed) != out.Session.Cursor {
			t.Fatalf("len(completed) != cursor: %+v", out.Session)
		}
		if (out.Session.PendingMin != nil) != (out.Session.Expected == AwaitingMax) {
			t.Fatalf("pendingMin invariant broken: %+v", out.Session)
		}
		s = out.Session
	}
	// The first min prompt comes from Begin; Step yields the remaining 2N-1 prompts.
	if len(prompts) != 2*len(names)-1 {
		t.Fatalf("prompts = %v", prompts)
	}
	for i, k := range prompts {
		want := AwaitingMax
		if i%2 == 1 {
			want = AwaitingMin
		}
		if k != want {
			t.Fatalf("prompt %d kind = %s, want %s", i, k, want)
		}
	}
}

func TestStepMinTenOffersOnlyTen(t *testing.T) {
	s := testSession(t, "Solo")
	out := mustStep(t, s, answer(s, 10))
	if got := choiceValues(out.Prompt); !reflect.DeepEqual(got, []int{10}) {
		t.Fatalf("max choices = %v", got)
	}
	out = mustStep(t, out.Session, answer(out.Session, 10))
	if out.Status != Completed || out.Entries[0].Players != "10~10" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestStepStaleEventsNeverMutate(t *testing.T) {
	s := testSession(t, "Gaia", "Root")
	s = mustStep(t, s, answer(s, 3)).Session
	before := s.Clone()

	good := answer(s, 5)
	cases := map[string]Event{
		"other game":    {OwnerID: good.OwnerID, Tag: good.Tag, Game: "Root", Value: 5},
		"old cursor":    {OwnerID: good.OwnerID, Tag: PromptTag{Kind: AwaitingMax, SessionID: s.ID, Index: 1}, Game: "Gaia", Value: 5},
		"wrong field":   {OwnerID: good.OwnerID, Tag: PromptTag{Kind: AwaitingMin, SessionID: s.ID, Index: 0}, Game: "Gaia", Value: 5},
		"old session":   {OwnerID: good.OwnerID, Tag: PromptTag{Kind: AwaitingMax, SessionID: "superseded", Index: 0}, Game: "Gaia", Value: 5},
		"another owner": {OwnerID: 99, Tag: good.Tag, Game: "Gaia", Value: 5},
	}
	for name, ev := range cases {
		t.Run(name, func(t *testing.T) {
			out := mustStep(t, s, ev)
			if out.Status != Stale || out.Session != nil {
				t.Fatalf("expected stale, got %+v", out)
			}
			if !reflect.DeepEqual(s, before) {
				t.Fatalf("session mutated: %+v", s)
			}
		})
	}

	if out := mustStep(t, nil, good); out.Status != Stale || out.Reason != ReasonNoSession {
		t.Fatalf("nil session: %+v", out)
	}
}

func TestStepRangeErrors(t *testing.T) {
	s := testSession(t, "Gaia")
	for _, v := range []int{1, 11, 0} {
		_, err := Step(s, answer(s, v))
		var rangeErr *RangeError
		if !errors.As(err, &rangeErr) || rangeErr.Field != AwaitingMin {
			t.Fatalf("min %d: expected RangeError, got %v", v, err)
		}
	}

	s = mustStep(t, s, answer(s, 4)).Session
	_, err := Step(s, answer(s, 3))
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) || rangeErr.Min != 4 || rangeErr.Max != MaxPlayers {
		t.Fatalf("max below min: %v", err)
	}
	if s.Expected != AwaitingMax || *s.PendingMin != 4 {
		t.Fatalf("session changed after range error: %+v", s)
	}
}

func TestStepDuplicateNamesAreIndependent(t *testing.T) {
	s := testSession(t, "Root", "Root")
	s = mustStep(t, s, answer(s, 2)).Session
	first := answer(s, 3)
	s = mustStep(t, s, first).Session

	// Replaying the first game's max answer must not count for the second Root.
	if out := mustStep(t, s, first); out.Status != Stale {
		t.Fatalf("replayed answer accepted: %+v", out)
	}
	s = mustStep(t, s, answer(s, 4)).Session
	out := mustStep(t, s, answer(s, 5))
	if out.Status != Completed || len(out.Entries) != 2 || out.Entries[1].Players != "4~5" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestPromptForRebuildsOutstandingPrompt(t *testing.T) {
	s := testSession(t, "Gaia")
	p, ok := PromptFor(s)
	if !ok || p.Tag.Kind != AwaitingMin || p.Choices[0].Label != "2명" || p.Choices[0].Description != "2명의 플레이어" {
		t.Fatalf("min prompt: %+v", p)
	}
	s = mustStep(t, s, answer(s, 7)).Session
	p, ok = PromptFor(s)
	if !ok || p.Tag.Kind != AwaitingMax || len(p.Choices) != 4 {
		t.Fatalf("max prompt: %+v", p)
	}
	if p.Text != "🎮 [Gaia]의 **최대 인원**을 선택해주세요." {
		t.Fatalf("max prompt text = %q", p.Text)
	}
}
