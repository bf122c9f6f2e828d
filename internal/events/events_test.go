package events

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/m3rciful/boardbot/internal/catalog"
)

func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func subscribe(t *testing.T, url, subject string) chan *nats.Msg {
	t.Helper()
	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	t.Cleanup(nc.Close)
	ch := make(chan *nats.Msg, 8)
	if _, err := nc.ChanSubscribe(subject, ch); err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return ch
}

func receive(t *testing.T, ch chan *nats.Msg) *nats.Msg {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
		return nil
	}
}

func TestPublishingStoreAnnouncesChanges(t *testing.T) {
	url := startTestNATS(t)
	msgs := subscribe(t, url, "boardbot.catalog.>")

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	ctx := context.Background()
	store := NewPublishingStore(catalog.NewFileStore(filepath.Join(t.TempDir(), "gameList.json")), pub, "boardbot.catalog")
	t.Cleanup(func() { _ = store.Close() })

	if err := store.AppendAndPersist(ctx, []catalog.Entry{catalog.NewEntry("Gaia", 3, 5), catalog.NewEntry("Root", 2, 4)}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := pub.conn.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	msg := receive(t, msgs)
	if msg.Subject != "boardbot.catalog.registered" {
		t.Fatalf("subject = %s", msg.Subject)
	}
	var registered GamesRegistered
	if err := json.Unmarshal(msg.Data, &registered); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if registered.Count != 2 || registered.Entries[1].Players != "2~4" {
		t.Fatalf("unexpected payload: %+v", registered)
	}

	if removed, err := store.RemoveByName(ctx, "Missing"); err != nil || removed {
		t.Fatalf("RemoveByName(Missing) = %v, %v", removed, err)
	}
	if removed, err := store.RemoveByName(ctx, "Gaia"); err != nil || !removed {
		t.Fatalf("RemoveByName(Gaia) = %v, %v", removed, err)
	}
	if err := pub.conn.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	msg = receive(t, msgs)
	if msg.Subject != "boardbot.catalog.removed" {
		t.Fatalf("missing delete should not publish; got %s", msg.Subject)
	}
	var removed GameRemoved
	if err := json.Unmarshal(msg.Data, &removed); err != nil || removed.Name != "Gaia" {
		t.Fatalf("unexpected payload: %+v, %v", removed, err)
	}
}

type failingStore struct{ catalog.Store }

func (failingStore) AppendAndPersist(context.Context, []catalog.Entry) error {
	return errors.New("disk full")
}

type recordingPublisher struct{ subjects []string }

func (r *recordingPublisher) Publish(_ context.Context, subject string, _ any) error {
	r.subjects = append(r.subjects, subject)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func TestPublishingStoreSkipsFailedWrites(t *testing.T) {
	rec := &recordingPublisher{}
	store := NewPublishingStore(failingStore{}, rec, "x")
	if err := store.AppendAndPersist(context.Background(), []catalog.Entry{catalog.NewEntry("Gaia", 3, 5)}); err == nil {
		t.Fatal("expected store error")
	}
	if len(rec.subjects) != 0 {
		t.Fatalf("published after failure: %v", rec.subjects)
	}
}

func TestSubject(t *testing.T) {
	if got := Subject("boardbot.catalog", SuffixRemoved); got != "boardbot.catalog.removed" {
		t.Fatalf("Subject = %s", got)
	}
	if got := Subject("", SuffixRegistered); got != "registered" {
		t.Fatalf("Subject without prefix = %s", got)
	}
}
