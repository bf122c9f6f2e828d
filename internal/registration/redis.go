package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTable stores each session as JSON under prefix+ownerID with the idle
// timeout as TTL, so redis does the eviction.
type RedisTable struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

var _ Table = (*RedisTable)(nil)

// NewRedisTable wraps client. ttl must be positive.
func NewRedisTable(client *redis.Client, prefix string, ttl time.Duration) *RedisTable {
	if ttl <= 0 {
		ttl = DefaultIdleTimeout
	}
	return &RedisTable{client: client, prefix: prefix, ttl: ttl, now: time.Now}
}

func (t *RedisTable) key(ownerID int64) string {
	return t.prefix + strconv.FormatInt(ownerID, 10)
}

func (t *RedisTable) Begin(ctx context.Context, owner Owner, names []string) (*Session, error) {
	s, err := newSession(owner, names, t.now())
	if err != nil {
		return nil, err
	}
	if err := t.put(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (t *RedisTable) Get(ctx context.Context, ownerID int64) (*Session, bool, error) {
	data, err := t.client.Get(ctx, t.key(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("registration: redis get: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false, fmt.Errorf("registration: decode session: %w", err)
	}
	return &s, true, nil
}

func (t *RedisTable) Update(ctx context.Context, s *Session) error {
	cp := s.Clone()
	cp.UpdatedAt = t.now()
	return t.put(ctx, cp)
}

func (t *RedisTable) Remove(ctx context.Context, ownerID int64) error {
	if err := t.client.Del(ctx, t.key(ownerID)).Err(); err != nil {
		return fmt.Errorf("registration: redis del: %w", err)
	}
	return nil
}

// Len counts live session keys with SCAN.
func (t *RedisTable) Len(ctx context.Context) (int, error) {
	n := 0
	iter := t.client.Scan(ctx, 0, t.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("registration: redis scan: %w", err)
	}
	return n, nil
}

func (t *RedisTable) put(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("registration: encode session: %w", err)
	}
	if err := t.client.Set(ctx, t.key(s.OwnerID), data, t.ttl).Err(); err != nil {
		return fmt.Errorf("registration: redis set: %w", err)
	}
	return nil
}
