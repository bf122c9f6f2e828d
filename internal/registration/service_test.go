package registration

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/boardbot/internal/catalog"
)

type gatewayCall struct {
	kind   string
	to     Target
	prompt Prompt
	count  int
	err    error
}

type recordingGateway struct {
	mu    sync.Mutex
	calls []gatewayCall
}

func (g *recordingGateway) PresentChoices(_ context.Context, to Target, p Prompt) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, gatewayCall{kind: "present", to: to, prompt: p})
	return nil
}

func (g *recordingGateway) Acknowledge(_ context.Context, to Target, n int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, gatewayCall{kind: "ack", to: to, count: n})
	return nil
}

func (g *recordingGateway) ReportFailure(_ context.Context, to Target, err error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, gatewayCall{kind: "failure", to: to, err: err})
	return nil
}

func (g *recordingGateway) last() gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[len(g.calls)-1]
}

func (g *recordingGateway) count(kind string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

// flakyStore fails AppendAndPersist while fail is set.
type flakyStore struct {
	catalog.Store
	mu   sync.Mutex
	fail bool
}

func (s *flakyStore) AppendAndPersist(ctx context.Context, entries []catalog.Entry) error {
	s.mu.Lock()
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return s.Store.AppendAndPersist(ctx, entries)
}

type serviceFixture struct {
	svc   *Service
	table *MemoryTable
	store *flakyStore
	gw    *recordingGateway
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	store := &flakyStore{Store: catalog.NewFileStore(filepath.Join(t.TempDir(), "gameList.json"))}
	table := NewMemoryTable(time.Hour)
	gw := &recordingGateway{}
	return &serviceFixture{svc: NewService(table, store, gw), table: table, store: store, gw: gw}
}

// press answers the prompt the gateway showed last.
func (f *serviceFixture) press(t *testing.T, ownerID int64, value int) Outcome {
	t.Helper()
	call := f.gw.last()
	if call.kind != "present" {
		t.Fatalf("last gateway call is %s, not a prompt", call.kind)
	}
	out, err := f.svc.HandleSelection(context.Background(), ownerID, call.prompt.Tag, value)
	if err != nil {
		t.Fatalf("HandleSelection: %v", err)
	}
	return out
}

func TestServiceGaiaRootScenario(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	if err := f.store.AppendAndPersist(ctx, []catalog.Entry{catalog.NewEntry("Catan", 3, 4)}); err != nil {
		t.Fatal(err)
	}

	owner := Owner{UserID: 1, ChatID: 10}
	if _, err := f.svc.Begin(ctx, owner, []string{"Gaia", "Root"}); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	first := f.gw.last()
	if first.prompt.Game != "Gaia" || first.prompt.Tag.Kind != AwaitingMin || first.to.ChatID != 10 {
		t.Fatalf("first prompt: %+v", first)
	}

	f.press(t, 1, 3)
	f.press(t, 1, 5)
	if p := f.gw.last().prompt; p.Game != "Root" || p.Tag.Kind != AwaitingMin {
		t.Fatalf("expected Root min prompt, got %+v", p)
	}
	f.press(t, 1, 2)
	out := f.press(t, 1, 4)
	if out.Status != Completed {
		t.Fatalf("expected Completed, got %v", out.Status)
	}

	if f.gw.count("present") != 4 {
		t.Fatalf("present calls = %d, want 4", f.gw.count("present"))
	}
	if ack := f.gw.last(); ack.kind != "ack" || ack.count != 2 {
		t.Fatalf("ack = %+v", ack)
	}
	if _, ok, _ := f.table.Get(ctx, 1); ok {
		t.Fatal("session should be removed after commit")
	}
	entries, _ := f.store.LoadAll(ctx)
	if len(entries) != 3 || entries[1] != catalog.NewEntry("Gaia", 3, 5) || entries[2] != catalog.NewEntry("Root", 2, 4) {
		t.Fatalf("catalog = %+v", entries)
	}
}

func TestServiceStoreFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	if _, err := f.svc.Begin(ctx, Owner{UserID: 1, ChatID: 10}, []string{"Gaia"}); err != nil {
		t.Fatal(err)
	}
	f.press(t, 1, 3)
	maxPrompt := f.gw.last().prompt

	f.store.fail = true
	out, err := f.svc.HandleSelection(ctx, 1, maxPrompt.Tag, 5)
	if err == nil || out.Status != Completed {
		t.Fatalf("expected commit error, got %+v, %v", out, err)
	}
	if fail := f.gw.last(); fail.kind != "failure" || fail.err == nil {
		t.Fatalf("failure not reported: %+v", fail)
	}
	s, ok, _ := f.table.Get(ctx, 1)
	if !ok || s.Cursor != 0 || s.Expected != AwaitingMax || *s.PendingMin != 3 {
		t.Fatalf("session not kept intact: %+v", s)
	}

	f.store.fail = false
	out, err = f.svc.HandleSelection(ctx, 1, maxPrompt.Tag, 5)
	if err != nil || out.Status != Completed {
		t.Fatalf("retry: %+v, %v", out, err)
	}
	entries, _ := f.store.LoadAll(ctx)
	if len(entries) != 1 {
		t.Fatalf("catalog = %+v", entries)
	}
}

func TestServiceBeginDiscardsOldBatch(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	owner := Owner{UserID: 1, ChatID: 10}
	if _, err := f.svc.Begin(ctx, owner, []string{"Gaia"}); err != nil {
		t.Fatal(err)
	}
	f.press(t, 1, 3)
	oldMax := f.gw.last().prompt

	if _, err := f.svc.Begin(ctx, owner, []string{"Root"}); err != nil {
		t.Fatal(err)
	}
	out, err := f.svc.HandleSelection(ctx, 1, oldMax.Tag, 5)
	if err != nil || out.Status != Stale {
		t.Fatalf("old prompt answer: %+v, %v", out, err)
	}
	entries, _ := f.store.LoadAll(ctx)
	if len(entries) != 0 {
		t.Fatalf("old batch committed: %+v", entries)
	}
}

func TestServiceIgnoresOutOfRangeAndUnknownOwners(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	if _, err := f.svc.Begin(ctx, Owner{UserID: 1}, []string{"Gaia"}); err != nil {
		t.Fatal(err)
	}
	tag := f.gw.last().prompt.Tag

	out, err := f.svc.HandleSelection(ctx, 1, tag, 42)
	if err != nil || out.Status != Stale || out.Reason != ReasonOutOfRange {
		t.Fatalf("out of range: %+v, %v", out, err)
	}
	out, err = f.svc.HandleSelection(ctx, 2, tag, 3)
	if err != nil || out.Status != Stale || out.Reason != ReasonNoSession {
		t.Fatalf("unknown owner: %+v, %v", out, err)
	}
	out, err = f.svc.HandleSelection(ctx, 1, PromptTag{Kind: AwaitingMin, SessionID: tag.SessionID, Index: 9}, 3)
	if err != nil || out.Status != Stale {
		t.Fatalf("index past queue: %+v, %v", out, err)
	}
	s, _, _ := f.table.Get(ctx, 1)
	if s.Expected != AwaitingMin || s.PendingMin != nil {
		t.Fatalf("session changed: %+v", s)
	}
}

func TestServiceBeginRejectsEmpty(t *testing.T) {
	f := newServiceFixture(t)
	if _, err := f.svc.Begin(context.Background(), Owner{UserID: 1}, nil); !errors.Is(err, ErrNoGameNames) {
		t.Fatalf("expected ErrNoGameNames, got %v", err)
	}
	if n, _ := f.svc.Active(context.Background()); n != 0 {
		t.Fatalf("session created for empty batch")
	}
}

func TestServiceAbandon(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	if ok, err := f.svc.Abandon(ctx, 1); err != nil || ok {
		t.Fatalf("Abandon without session = %v, %v", ok, err)
	}
	_, _ = f.svc.Begin(ctx, Owner{UserID: 1}, []string{"Gaia"})
	if ok, err := f.svc.Abandon(ctx, 1); err != nil || !ok {
		t.Fatalf("Abandon = %v, %v", ok, err)
	}
	if n, _ := f.svc.Active(ctx); n != 0 {
		t.Fatalf("Active = %d", n)
	}
}

func TestServiceAbandonSessionIgnoresOldRuns(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	old, _ := f.svc.Begin(ctx, Owner{UserID: 1}, []string{"Gaia"})
	current, _ := f.svc.Begin(ctx, Owner{UserID: 1}, []string{"Root"})

	if ok, err := f.svc.AbandonSession(ctx, 1, old.ID); err != nil || ok {
		t.Fatalf("old run cancel = %v, %v", ok, err)
	}
	if n, _ := f.svc.Active(ctx); n != 1 {
		t.Fatalf("current run dropped by an old cancel button")
	}
	if ok, err := f.svc.AbandonSession(ctx, 1, current.ID); err != nil || !ok {
		t.Fatalf("current run cancel = %v, %v", ok, err)
	}
}

func TestServiceOwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	var wg sync.WaitGroup
	for owner := int64(1); owner <= 8; owner++ {
		wg.Add(1)
		go func(owner int64) {
			defer wg.Done()
			if _, err := f.svc.Begin(ctx, Owner{UserID: owner}, []string{"A", "B"}); err != nil {
				t.Errorf("Begin(%d): %v", owner, err)
				return
			}
			for i := 0; i < 4; i++ {
				cur, _, _ := f.table.Get(ctx, owner)
				p, _ := PromptFor(cur)
				if _, err := f.svc.HandleSelection(ctx, owner, p.Tag, 2); err != nil {
					t.Errorf("owner %d step %d: %v", owner, i, err)
					return
				}
			}
		}(owner)
	}
	wg.Wait()

	entries, _ := f.store.LoadAll(ctx)
	if len(entries) != 16 {
		t.Fatalf("catalog has %d entries, want 16", len(entries))
	}
	if n, _ := f.svc.Active(ctx); n != 0 {
		t.Fatalf("Active = %d", n)
	}
	if n := f.svc.locks.size(); n != 0 {
		t.Fatalf("lock table not drained: %d", n)
	}
}
