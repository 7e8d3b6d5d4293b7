package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/iamasit07/dropfour/internal/domain"
	"github.com/iamasit07/dropfour/pkg/uid"
)

// ConnectionManagerInterface pushes messages to everyone watching a session.
type ConnectionManagerInterface interface {
	SendMessage(sessionID string, message domain.ServerMessage) error
	RemoveSession(sessionID string)
}

type GameRepository interface {
	SaveGame(ctx context.Context, record domain.GameRecord) (int64, error)
}

type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, sessionID string, snap domain.Snapshot) error
	DeleteSnapshot(ctx context.Context, sessionID string) error
}

// Session is one hosted game: a controller, the debouncer in front of it,
// and the publisher that fans its snapshots out.
type Session struct {
	ID         string
	CreatedAt  time.Time
	Controller *Controller

	debouncer *Debouncer

	mu           sync.Mutex
	startedAt    time.Time
	lastActivity time.Time

	latestMu sync.Mutex
	latest   *domain.Snapshot
	dirty    chan struct{}
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// SelectColumn queues a column selection behind the input debouncer. Only
// the last selection of a burst reaches the controller.
func (s *Session) SelectColumn(col int) error {
	if !domain.IsValidColumn(col) {
		return fmt.Errorf("%w: %d", domain.ErrInvalidColumn, col)
	}
	s.touch()

	s.debouncer.Call(func() {
		outcome, err := s.Controller.SubmitColumn(col)
		if err != nil {
			log.Printf("[GAME] Session %s: column %d: %v", s.ID, col, err)
			return
		}
		if outcome != Accepted {
			log.Printf("[GAME] Session %s: column %d rejected (%s)", s.ID, col, outcome)
		}
	})
	return nil
}

// Restart resets the game. Valid at any time. A selection still waiting in
// the debounce window is dropped with the old game.
func (s *Session) Restart() {
	s.debouncer.Cancel()

	s.mu.Lock()
	s.startedAt = time.Now()
	s.lastActivity = s.startedAt
	s.mu.Unlock()

	s.Controller.Reset()
	log.Printf("[GAME] Session %s restarted", s.ID)
}

func (s *Session) Snapshot() domain.Snapshot {
	return s.Controller.Snapshot()
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

func (s *Session) gameStartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// publish keeps only the newest snapshot; the publisher loop always sends
// the latest state, so a slow consumer never sees states out of order.
func (s *Session) publish(snap domain.Snapshot) {
	s.latestMu.Lock()
	s.latest = &snap
	s.latestMu.Unlock()

	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *Session) takeLatest() *domain.Snapshot {
	s.latestMu.Lock()
	defer s.latestMu.Unlock()
	snap := s.latest
	s.latest = nil
	return snap
}

// stop cancels pending input and returns once the publisher has exited, so
// no cache write can land after it.
func (s *Session) stop() {
	s.stopOnce.Do(func() {
		s.debouncer.Cancel()
		close(s.done)
	})
	<-s.stopped
}

// SessionManager hosts all live sessions.
type SessionManager struct {
	Session map[string]*Session
	mu      sync.RWMutex

	conn      ConnectionManagerInterface
	repo      GameRepository
	cache     SnapshotCache
	timings   Timings
	scheduler Scheduler
}

type SessionManagerConfig struct {
	Timings   Timings
	Scheduler Scheduler
	Conn      ConnectionManagerInterface
	// Repo and Cache are optional.
	Repo      GameRepository
	Cache     SnapshotCache
}

func NewSessionManager(cfg SessionManagerConfig) *SessionManager {
	if cfg.Scheduler == nil {
		cfg.Scheduler = RealScheduler
	}
	return &SessionManager{
		Session:   make(map[string]*Session),
		conn:      cfg.Conn,
		repo:      cfg.Repo,
		cache:     cfg.Cache,
		timings:   cfg.Timings,
		scheduler: cfg.Scheduler,
	}
}

func (sm *SessionManager) CreateSession() (*Session, error) {
	id, err := uid.GenerateSessionID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := &Session{
		ID:           id,
		CreatedAt:    now,
		startedAt:    now,
		lastActivity: now,
		debouncer:    NewDebouncer(sm.timings.DebounceWindow, sm.scheduler),
		dirty:        make(chan struct{}, 1),
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	s.Controller = NewController(ControllerConfig{
		Timings:   sm.timings,
		Scheduler: sm.scheduler,
		OnChange:  s.publish,
		OnResolved: func(snap domain.Snapshot) {
			sm.saveGameAsync(domain.NewGameRecord(s.ID, snap, s.gameStartedAt(), time.Now()))
		},
	})

	sm.mu.Lock()
	sm.Session[id] = s
	sm.mu.Unlock()

	go sm.publishLoop(s)

	log.Printf("[SESSION] Created session %s", id)
	return s, nil
}

func (sm *SessionManager) GetSession(sessionID string) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	s, exists := sm.Session[sessionID]
	return s, exists
}

func (sm *SessionManager) RemoveSession(sessionID string) error {
	sm.mu.Lock()
	s, exists := sm.Session[sessionID]
	if !exists {
		sm.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	delete(sm.Session, sessionID)
	sm.mu.Unlock()

	log.Printf("[SESSION] Removing session %s", sessionID)
	s.stop()
	s.Controller.Reset()
	if sm.conn != nil {
		sm.conn.RemoveSession(sessionID)
	}
	if sm.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := sm.cache.DeleteSnapshot(ctx, sessionID); err != nil {
			log.Printf("[SESSION] Snapshot cache delete for %s failed: %v", sessionID, err)
		}
		cancel()
	}
	return nil
}

func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.Session)
}

// CleanupIdleSessions removes sessions without input for longer than maxIdle.
func (sm *SessionManager) CleanupIdleSessions(maxIdle time.Duration) int {
	now := time.Now()

	sm.mu.RLock()
	var stale []string
	for id, s := range sm.Session {
		if now.Sub(s.LastActivity()) > maxIdle {
			stale = append(stale, id)
		}
	}
	sm.mu.RUnlock()

	count := 0
	for _, id := range stale {
		if err := sm.RemoveSession(id); err == nil {
			count++
		}
	}

	if count > 0 {
		log.Printf("[SESSION] Memory cleanup: Removed %d idle sessions", count)
	}
	return count
}

func (sm *SessionManager) publishLoop(s *Session) {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			return
		case <-s.dirty:
			snap := s.takeLatest()
			if snap == nil {
				continue
			}
			if sm.conn != nil {
				if err := sm.conn.SendMessage(s.ID, domain.ServerMessage{Type: domain.MessageTypeState, SessionID: s.ID, State: snap}); err != nil {
					log.Printf("[SESSION] Push to session %s failed: %v", s.ID, err)
				}
			}
			if sm.cache != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				if err := sm.cache.SaveSnapshot(ctx, s.ID, *snap); err != nil {
					log.Printf("[SESSION] Snapshot cache write for %s failed: %v", s.ID, err)
				}
				cancel()
			}
		}
	}
}

// Saves finished games in the background so the state machine never waits on the database
func (sm *SessionManager) saveGameAsync(record domain.GameRecord) {
	if sm.repo == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		id, err := sm.repo.SaveGame(ctx, record)
		if err != nil {
			log.Printf("[GAME] Error saving game for session %s: %v", record.SessionID, err)
			return
		}
		log.Printf("[GAME] Game %d (session %s) saved successfully", id, record.SessionID)
	}()
}
