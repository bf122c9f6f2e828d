package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/boardbot/core/logger"
	"github.com/m3rciful/boardbot/internal/catalog"
)

// Gateway shows prompts and results to the owner. Calls must not block on
// the owner answering; answers arrive later as events.
type Gateway interface {
	PresentChoices(ctx context.Context, to Target, p Prompt) error
	Acknowledge(ctx context.Context, to Target, registered int) error
	ReportFailure(ctx context.Context, to Target, err error) error
}

// ReasonOutOfRange marks an event dropped because its value was never offered.
const ReasonOutOfRange = "out_of_range"

// Service applies state machine outcomes to the table, the catalog and the gateway.
type Service struct {
	table   Table
	store   catalog.Store
	gateway Gateway
	locks   keyedMutex
}

// NewService wires the wizard to its collaborators.
func NewService(table Table, store catalog.Store, gateway Gateway) *Service {
	return &Service{table: table, store: store, gateway: gateway}
}

// Begin starts a new batch for owner, discarding any earlier one, and sends the first prompt.
func (s *Service) Begin(ctx context.Context, owner Owner, names []string) (*Session, error) {
	if len(names) == 0 {
		return nil, ErrNoGameNames
	}
	unlock := s.locks.Lock(owner.UserID)
	defer unlock()

	prev, hadPrev, err := s.table.Get(ctx, owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("registration: lookup: %w", err)
	}
	sess, err := s.table.Begin(ctx, owner, names)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithSessionID(ctx, sess.ID)
	attrs := []slog.Attr{slog.Int("games", len(names))}
	if hadPrev {
		attrs = append(attrs, slog.String("replaced", prev.ID))
	}
	logger.LogEvent(ctx, logger.SVCRegistration, slog.LevelInfo, "session.begin", attrs...)

	p, _ := PromptFor(sess)
	if err := s.gateway.PresentChoices(ctx, sess.Target(), p); err != nil {
		return sess, fmt.Errorf("registration: present first prompt: %w", err)
	}
	return sess, nil
}

// HandleSelection resolves the game from the tag against the owner's session and applies it.
func (s *Service) HandleSelection(ctx context.Context, ownerID int64, tag PromptTag, value int) (Outcome, error) {
	unlock := s.locks.Lock(ownerID)
	defer unlock()

	sess, ok, err := s.table.Get(ctx, ownerID)
	if err != nil {
		return Outcome{}, fmt.Errorf("registration: lookup: %w", err)
	}
	var game string
	if ok && tag.Index >= 0 && tag.Index < len(sess.Queue) {
		game = sess.Queue[tag.Index]
	}
	if !ok {
		sess = nil
	}
	return s.apply(ctx, sess, Event{OwnerID: ownerID, Tag: tag, Game: game, Value: value})
}

// HandleEvent applies a fully specified event.
func (s *Service) HandleEvent(ctx context.Context, ev Event) (Outcome, error) {
	unlock := s.locks.Lock(ev.OwnerID)
	defer unlock()

	sess, ok, err := s.table.Get(ctx, ev.OwnerID)
	if err != nil {
		return Outcome{}, fmt.Errorf("registration: lookup: %w", err)
	}
	if !ok {
		sess = nil
	}
	return s.apply(ctx, sess, ev)
}

func (s *Service) apply(ctx context.Context, sess *Session, ev Event) (Outcome, error) {
	if sess != nil {
		ctx = logger.WithSessionID(ctx, sess.ID)
	}
	out, err := Step(sess, ev)
	var rangeErr *RangeError
	switch {
	case errors.As(err, &rangeErr):
		logger.LogEvent(ctx, logger.SVCRegistration, slog.LevelWarn, "selection.rejected",
			slog.String("outcome", "rejected"),
			slog.String("field", string(rangeErr.Field)),
			slog.Int("value", rangeErr.Value),
			slog.String("err_code", rangeErr.Code()),
		)
		return Outcome{Status: Stale, Reason: ReasonOutOfRange}, nil
	case err != nil:
		return Outcome{}, err
	}

	switch out.Status {
	case Stale:
		logger.LogEvent(ctx, logger.SVCRegistration, slog.LevelDebug, "selection.stale",
			slog.String("outcome", "stale"),
			slog.String("cause", out.Reason),
			slog.Int("cursor", ev.Tag.Index),
			slog.String("field", string(ev.Tag.Kind)),
		)
		return out, nil

	case Advanced:
		if err := s.table.Update(ctx, out.Session); err != nil {
			return Outcome{}, fmt.Errorf("registration: save session: %w", err)
		}
		logger.LogEvent(ctx, logger.SVCRegistration, slog.LevelDebug, "selection.accepted",
			slog.String("game", ev.Game),
			slog.String("field", string(ev.Tag.Kind)),
			slog.Int("value", ev.Value),
			slog.Int("cursor", out.Session.Cursor),
		)
		if err := s.gateway.PresentChoices(ctx, out.Session.Target(), *out.Prompt); err != nil {
			return out, fmt.Errorf("registration: present prompt: %w", err)
		}
		return out, nil

	case Completed:
		target := out.Session.Target()
		if err := s.store.AppendAndPersist(ctx, out.Entries); err != nil {
			logger.LogEvent(ctx, logger.SVCRegistration, slog.LevelError, "batch.commit",
				slog.String("status", "fail"),
				slog.Int("count", len(out.Entries)),
				slog.String("err", err.Error()),
			)
			if gwErr := s.gateway.ReportFailure(ctx, target, err); gwErr != nil {
				err = errors.Join(err, gwErr)
			}
			return out, fmt.Errorf("registration: commit batch: %w", err)
		}
		if err := s.table.Remove(ctx, out.Session.OwnerID); err != nil {
			return out, fmt.Errorf("registration: remove session: %w", err)
		}
		logger.LogEvent(ctx, logger.SVCRegistration, slog.LevelInfo, "batch.commit",
			slog.String("status", "ok"),
			slog.Int("count", len(out.Entries)),
		)
		if err := s.gateway.Acknowledge(ctx, target, len(out.Entries)); err != nil {
			return out, fmt.Errorf("registration: acknowledge: %w", err)
		}
		return out, nil
	}
	return out, nil
}

// Current returns the owner's session, if any.
func (s *Service) Current(ctx context.Context, ownerID int64) (*Session, bool, error) {
	return s.table.Get(ctx, ownerID)
}

// Abandon drops the owner's session without committing. It reports whether one existed.
func (s *Service) Abandon(ctx context.Context, ownerID int64) (bool, error) {
	return s.AbandonSession(ctx, ownerID, "")
}

// AbandonSession is Abandon restricted to one run: a cancel button from a
// superseded run must not drop the newer one. An empty sessionID matches any run.
func (s *Service) AbandonSession(ctx context.Context, ownerID int64, sessionID string) (bool, error) {
	unlock := s.locks.Lock(ownerID)
	defer unlock()

	sess, ok, err := s.table.Get(ctx, ownerID)
	if err != nil || !ok {
		return false, err
	}
	if sessionID != "" && sess.ID != sessionID {
		return false, nil
	}
	if err := s.table.Remove(ctx, ownerID); err != nil {
		return false, fmt.Errorf("registration: remove session: %w", err)
	}
	logger.LogEvent(logger.WithSessionID(ctx, sess.ID), logger.SVCRegistration, slog.LevelInfo, "session.abandon",
		slog.String("outcome", "cancelled"),
		slog.Int("cursor", sess.Cursor),
	)
	return true, nil
}

// Active counts in-flight sessions.
func (s *Service) Active(ctx context.Context) (int, error) {
	return s.table.Len(ctx)
}
