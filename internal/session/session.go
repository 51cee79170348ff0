// Package session keeps the per-user UI state in memory: the selected
// document and its simulated job, the special words dictionary and the
// settings profile. Nothing here survives a restart.
package session

import (
	"sync"

	"github.com/doc-translator/backend/internal/dictionary"
	"github.com/doc-translator/backend/internal/job"
	"github.com/doc-translator/backend/internal/settings"
)

type Session struct {
	UserID     int64
	Dictionary *dictionary.Dictionary
	Job        *job.Tracker

	mu      sync.Mutex
	profile settings.Profile
}

func (s *Session) Settings() settings.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// UpdateSettings replaces the profile with the result of fn. The profile is
// left unchanged when fn fails.
func (s *Session) UpdateSettings(fn func(settings.Profile) (settings.Profile, error)) (settings.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.profile)
	if err != nil {
		return s.profile, err
	}
	s.profile = next
	return next, nil
}

func (s *Session) close() {
	s.Job.Close()
}
