package session

import (
	"context"
	"sync"
	"time"

	"github.com/doc-translator/backend/internal/dictionary"
	"github.com/doc-translator/backend/internal/job"
	"github.com/doc-translator/backend/internal/settings"
	"go.uber.org/zap"
)

type Config struct {
	IdleTTL          time.Duration
	DictPolicy       dictionary.ExtraFieldPolicy
	Defaults         settings.Profile
	ProgressStep     int
	ProgressInterval time.Duration
	// JobOptions are applied after the defaults built from the fields above.
	JobOptions []job.Option
}

// Store maps user IDs to their sessions.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*entry
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
}

type entry struct {
	sess     *Session
	lastSeen time.Time
}

func NewStore(cfg Config, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Defaults.Mode == "" {
		cfg.Defaults = settings.Defaults()
	}
	return &Store{
		sessions: make(map[int64]*entry),
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Get returns the user's session, creating it on first use, and marks it as
// recently seen.
func (s *Store) Get(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[userID]
	if !ok {
		e = &entry{sess: s.newSession(userID)}
		s.sessions[userID] = e
		s.log.Info("session created", zap.Int64("user_id", userID))
	}
	e.lastSeen = s.now()
	return e.sess
}

// Drop ends the user's session and stops its job timer.
func (s *Store) Drop(userID int64) bool {
	s.mu.Lock()
	e, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()

	if ok {
		e.sess.close()
		s.log.Info("session dropped", zap.Int64("user_id", userID))
	}
	return ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the configured TTL and returns
// how many were removed. A zero TTL disables eviction.
func (s *Store) Sweep() int {
	if s.cfg.IdleTTL <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.cfg.IdleTTL)
	var expired []*entry

	s.mu.Lock()
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		e.sess.close()
		s.log.Info("session expired", zap.Int64("user_id", e.sess.UserID), zap.Time("last_seen", e.lastSeen))
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Info("swept idle sessions", zap.Int("count", n))
			}
		}
	}
}

// Close drops every session.
func (s *Store) Close() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[int64]*entry)
	s.mu.Unlock()

	for _, e := range all {
		e.sess.close()
	}
}

func (s *Store) newSession(userID int64) *Session {
	log := s.log.With(zap.Int64("user_id", userID))
	opts := []job.Option{
		job.WithLogger(log),
		job.WithStep(s.cfg.ProgressStep),
		job.WithInterval(s.cfg.ProgressInterval),
		job.WithObserver(func(snap job.Snapshot) {
			log.Debug("job state", zap.String("phase", string(snap.Phase)), zap.Int("progress", snap.Progress))
		}),
	}
	opts = append(opts, s.cfg.JobOptions...)

	return &Session{
		UserID:     userID,
		Dictionary: dictionary.New(s.cfg.DictPolicy),
		Job:        job.NewTracker(opts...),
		profile:    s.cfg.Defaults,
	}
}
