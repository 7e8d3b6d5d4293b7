package cleanup

import (
	"context"
	"log"
	"time"

	"github.com/iamasit07/dropfour/internal/service/game"
)

type Worker struct {
	SessionManager *game.SessionManager
	MaxIdle        time.Duration
	Interval       time.Duration
}

func NewWorker(sm *game.SessionManager, maxIdle, interval time.Duration) *Worker {
	return &Worker{SessionManager: sm, MaxIdle: maxIdle, Interval: interval}
}

// Start runs the cleanup every Interval until ctx is done
func (w *Worker) Start(ctx context.Context) {
	log.Println("[CLEANUP] Background worker started")

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[CLEANUP] Background worker stopped")
			return
		case <-ticker.C:
			w.RunCleanup()
		}
	}
}

// RunCleanup evicts sessions that saw no input for longer than MaxIdle
func (w *Worker) RunCleanup() int {
	removed := w.SessionManager.CleanupIdleSessions(w.MaxIdle)
	if removed > 0 {
		log.Printf("[CLEANUP] Removed %d idle sessions, %d remain", removed, w.SessionManager.Count())
	}
	return removed
}
