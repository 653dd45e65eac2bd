package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMissingSession is returned when a dismissal has no session to belong to
var ErrMissingSession = errors.New("session id is required")

const dismissalKeyPrefix = "dismissed"

// RedisDismissalStore keeps one Redis set per session. The set expires ttl
// after the most recent dismissal.
type RedisDismissalStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ DismissalStore = (*RedisDismissalStore)(nil)

func NewRedisDismissalStore(client redis.Cmdable, ttl time.Duration) *RedisDismissalStore {
	return &RedisDismissalStore{client: client, ttl: ttl}
}

func dismissalKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", dismissalKeyPrefix, sessionID)
}

func (s *RedisDismissalStore) Dismiss(ctx context.Context, sessionID, recommendationID string) error {
	if sessionID == "" {
		return ErrMissingSession
	}
	key := dismissalKey(sessionID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, recommendationID)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record dismissal: %w", err)
	}
	return nil
}

func (s *RedisDismissalStore) Dismissed(ctx context.Context, sessionID string) (map[string]bool, error) {
	out := make(map[string]bool)
	if sessionID == "" {
		return out, nil
	}
	ids, err := s.client.SMembers(ctx, dismissalKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load dismissals: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// MemoryDismissalStore is the in-process store used when Redis is not configured
type MemoryDismissalStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*memorySession
}

type memorySession struct {
	ids     map[string]bool
	expires time.Time
}

var _ DismissalStore = (*MemoryDismissalStore)(nil)

func NewMemoryDismissalStore(ttl time.Duration) *MemoryDismissalStore {
	return &MemoryDismissalStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*memorySession),
	}
}

func (s *MemoryDismissalStore) Dismiss(_ context.Context, sessionID, recommendationID string) error {
	if sessionID == "" {
		return ErrMissingSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &memorySession{ids: make(map[string]bool)}
		s.sessions[sessionID] = sess
	}
	sess.ids[recommendationID] = true
	sess.expires = now.Add(s.ttl)
	return nil
}

func (s *MemoryDismissalStore) Dismissed(_ context.Context, sessionID string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]bool)
	sess, ok := s.sessions[sessionID]
	if !ok || !s.now().Before(sess.expires) {
		return out, nil
	}
	for id := range sess.ids {
		out[id] = true
	}
	return out, nil
}

func (s *MemoryDismissalStore) evictLocked(now time.Time) {
	for id, sess := range s.sessions {
		if !now.Before(sess.expires) {
			delete(s.sessions, id)
		}
	}
}
