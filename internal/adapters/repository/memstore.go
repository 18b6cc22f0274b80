package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/chainaudit/internal/domain/types"
	"github.com/okian/chainaudit/pkg/logger"
	"github.com/okian/chainaudit/pkg/metrics"
)

const (
	defaultTTL           = 30 * time.Minute
	defaultSweepInterval = time.Minute
	defaultMaxSessions   = 10_000

	evictIdle     = "idle"
	evictCapacity = "capacity"
)

// MemoryStore is an in-memory Store with idle expiry.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl           time.Duration
	sweepInterval time.Duration
	maxSessions   int
	now           func() time.Time
	newID         func() string
	log           logger.Logger

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs a session store and starts its sweeper, which
// runs until ctx is cancelled or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions:      make(map[string]*Session),
		ttl:           defaultTTL,
		sweepInterval: defaultSweepInterval,
		maxSessions:   defaultMaxSessions,
		now:           time.Now,
		newID:         uuid.NewString,
		log:           logger.Nop(),
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.startSweeper(ctx)
	metrics.UpdateActiveSessions(0)
	return s
}

func (s *MemoryStore) startSweeper(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				if n := s.Sweep(ctx, s.now()); n > 0 {
					s.log.Debug(ctx, "swept idle sessions", logger.Int("removed", n))
				}
			}
		}
	}()
}

// Close stops the sweeper.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Create implements Store.Create. When the store is full the least recently
// seen session is evicted first.
func (s *MemoryStore) Create(_ context.Context, state types.State) (Session, error) {
	id := s.newID()
	if id == "" {
		return Session{}, ErrInvalidID
	}
	now := s.now()

	s.mu.Lock()
	if _, exists := s.sessions[id]; exists {
		s.mu.Unlock()
		return Session{}, fmt.Errorf("%w: duplicate id %s", ErrInvalidID, id)
	}
	evicted := 0
	for len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
		evicted++
	}
	sess := &Session{ID: id, State: state, CreatedAt: now, LastSeen: now}
	s.sessions[id] = sess
	out := *sess
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.RecordSessionCreated()
	metrics.RecordSessionEvicted(evictCapacity, evicted)
	metrics.UpdateActiveSessions(count)
	return out, nil
}

func (s *MemoryStore) evictOldestLocked() {
	var oldest *Session
	for _, sess := range s.sessions {
		if oldest == nil || sess.LastSeen.Before(oldest.LastSeen) {
			oldest = sess
		}
	}
	if oldest != nil {
		delete(s.sessions, oldest.ID)
	}
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.live(id, now)
	if !ok {
		return Session{}, ErrNotFound
	}
	sess.LastSeen = now
	return *sess, nil
}

// Update implements Store.Update.
func (s *MemoryStore) Update(_ context.Context, id string, fn func(*types.State)) (Session, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.live(id, now)
	if !ok {
		return Session{}, ErrNotFound
	}
	if fn != nil {
		fn(&sess.State)
	}
	sess.LastSeen = now
	return *sess, nil
}

// live returns the session if it exists and has not idled past the TTL.
// Caller must hold the lock.
func (s *MemoryStore) live(id string, now time.Time) (*Session, bool) {
	sess, ok := s.sessions[id]
	if !ok || now.Sub(sess.LastSeen) > s.ttl {
		return nil, false
	}
	return sess, true
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.UpdateActiveSessions(count)
	return nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep implements Store.Sweep.
func (s *MemoryStore) Sweep(_ context.Context, now time.Time) int {
	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.RecordSessionEvicted(evictIdle, removed)
	metrics.UpdateActiveSessions(count)
	return removed
}
