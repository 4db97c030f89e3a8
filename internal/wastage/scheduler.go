package wastage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/pantry/internal/store"
	"github.com/dukerupert/pantry/internal/websocket"
)

// Scheduler periodically sweeps every user's expired groceries and purges
// expired sessions.
type Scheduler struct {
	mu       sync.RWMutex
	service  *Service
	users    *store.UserStore
	sessions *store.SessionStore
	hub      *websocket.Hub
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(svc *Service, users *store.UserStore, sessions *store.SessionStore, hub *websocket.Hub, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		service:  svc,
		users:    users,
		sessions: sessions,
		hub:      hub,
		logger:   logger.With("component", "sweep_scheduler"),
		interval: interval,
		now:      time.Now,
	}
}

// Start runs one sweep immediately and then one per interval until ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.RunOnce()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// RunOnce sweeps all users and returns the total number of groceries it
// marked wasted. A failure for one user is logged and does not stop the
// others.
func (s *Scheduler) RunOnce() int {
	ids, err := s.users.ListIDs()
	if err != nil {
		s.logger.Error("list users", "error", err)
		return 0
	}

	asOf := s.now()
	total := 0
	for _, id := range ids {
		n, err := s.service.SweepExpired(id, asOf)
		if err != nil {
			s.logger.Error("sweep", "owner", id, "error", err)
			continue
		}
		if n > 0 && s.hub != nil {
			s.hub.Broadcast(id, websocket.NewMessage("grocery", "swept", "", map[string]any{"count": n}))
		}
		total += n
	}

	if s.sessions != nil {
		purged, err := s.sessions.DeleteExpired()
		if err != nil {
			s.logger.Error("purge sessions", "error", err)
		} else if purged > 0 {
			s.logger.Debug("purged expired sessions", "count", purged)
		}
	}
	return total
}
