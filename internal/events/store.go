package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/boardbot/core/logger"
	"github.com/m3rciful/boardbot/internal/catalog"
)

// PublishingStore wraps a catalog.Store and announces successful mutations.
// Publish failures are logged; the catalog change already happened.
type PublishingStore struct {
	catalog.Store
	pub    Publisher
	prefix string
	now    func() time.Time
}

var _ catalog.Store = (*PublishingStore)(nil)

// NewPublishingStore decorates store. A nil publisher falls back to NoopPublisher.
func NewPublishingStore(store catalog.Store, pub Publisher, prefix string) *PublishingStore {
	if pub == nil {
		pub = &NoopPublisher{}
	}
	return &PublishingStore{Store: store, pub: pub, prefix: prefix, now: time.Now}
}

func (s *PublishingStore) AppendAndPersist(ctx context.Context, entries []catalog.Entry) error {
	if err := s.Store.AppendAndPersist(ctx, entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	s.publish(ctx, SuffixRegistered, GamesRegistered{
		Entries: append([]catalog.Entry(nil), entries...),
		Count:   len(entries),
		At:      s.now().UTC(),
	})
	return nil
}

func (s *PublishingStore) RemoveByName(ctx context.Context, name string) (bool, error) {
	removed, err := s.Store.RemoveByName(ctx, name)
	if err != nil || !removed {
		return removed, err
	}
	s.publish(ctx, SuffixRemoved, GameRemoved{Name: name, At: s.now().UTC()})
	return true, nil
}

// Close closes the publisher and the wrapped store.
func (s *PublishingStore) Close() error {
	return errors.Join(s.pub.Close(), s.Store.Close())
}

func (s *PublishingStore) publish(ctx context.Context, suffix string, event any) {
	subject := Subject(s.prefix, suffix)
	if err := s.pub.Publish(ctx, subject, event); err != nil {
		logger.LogEvent(ctx, logger.Events, slog.LevelWarn, "publish",
			slog.String("status", "fail"),
			slog.String("subject", subject),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.LogEvent(ctx, logger.Events, slog.LevelDebug, "publish",
		slog.String("status", "ok"),
		slog.String("subject", subject),
	)
}
