package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/game"
)

type memoryEntry struct {
	session   entity.Session
	expiresAt time.Time
}

type memorySession struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionRepository - keeps sessions in process memory with the same expiry rules as Redis.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return &memorySession{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (that *memorySession) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	now := that.now()
	that.sweepLocked(now)

	entry := memoryEntry{session: cloneSession(session)}
	if that.ttl > 0 {
		entry.expiresAt = now.Add(that.ttl)
	}
	that.sessions[session.ID] = entry

	return nil
}

func (that *memorySession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.sessions[id]
	if !ok || entry.expired(that.now()) {
		delete(that.sessions, id)
		return nil, apperror.ErrSessionNotFound
	}

	session := cloneSession(&entry.session)

	return &session, nil
}

func (that *memorySession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.sessions[id]
	delete(that.sessions, id)

	if !ok || entry.expired(that.now()) {
		return apperror.ErrSessionNotFound
	}

	return nil
}

func (that *memorySession) sweepLocked(now time.Time) {
	for id, entry := range that.sessions {
		if entry.expired(now) {
			delete(that.sessions, id)
		}
	}
}

func (that memoryEntry) expired(now time.Time) bool {
	return !that.expiresAt.IsZero() && !now.Before(that.expiresAt)
}

func cloneSession(session *entity.Session) entity.Session {
	cp := *session
	cp.History = append([]game.Board(nil), session.History...)

	return cp
}
