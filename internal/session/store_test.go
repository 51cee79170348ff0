package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/doc-translator/backend/internal/dictionary"
	"github.com/doc-translator/backend/internal/job"
	"github.com/doc-translator/backend/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(ttl time.Duration) (*Store, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(Config{IdleTTL: ttl, DictPolicy: dictionary.ExtraFieldsKeep}, nil)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestStore_GetCreatesOnce(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	t.Cleanup(s.Close)

	a := s.Get(1)
	b := s.Get(1)
	c := s.Get(2)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, int64(1), a.UserID)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, settings.Defaults(), a.Settings())
	assert.Equal(t, job.PhaseIdle, a.Job.Snapshot().Phase)
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	t.Cleanup(s.Close)

	_, _, err := s.Get(1).Dictionary.Add("cat", "chat")
	require.NoError(t, err)

	assert.Equal(t, 1, s.Get(1).Dictionary.Len())
	assert.Equal(t, 0, s.Get(2).Dictionary.Len())
}

func TestStore_Drop(t *testing.T) {
	s, _ := newTestStore(time.Hour)

	sess := s.Get(1)
	sess.Job.SelectDocument(job.Document{Name: "a.doc"})
	_, err := sess.Job.Start()
	require.NoError(t, err)

	assert.True(t, s.Drop(1))
	assert.False(t, s.Drop(1))
	assert.Equal(t, 0, s.Len())

	_, err = sess.Job.Start()
	assert.ErrorIs(t, err, job.ErrClosed)

	assert.NotSame(t, sess, s.Get(1), "a new session is created after drop")
	s.Close()
}

func TestStore_Sweep(t *testing.T) {
	s, now := newTestStore(time.Hour)
	t.Cleanup(s.Close)

	old := s.Get(1)
	*now = now.Add(45 * time.Minute)
	s.Get(2)
	*now = now.Add(30 * time.Minute)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	_, err := old.Job.Start()
	assert.ErrorIs(t, err, job.ErrClosed)

	*now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 0, s.Len())
}

func TestStore_SweepDisabled(t *testing.T) {
	s, now := newTestStore(0)
	t.Cleanup(s.Close)

	s.Get(1)
	*now = now.Add(24 * time.Hour)
	assert.Equal(t, 0, s.Sweep())
}

func TestStore_RunStopsOnCancel(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSession_UpdateSettings(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	t.Cleanup(s.Close)
	sess := s.Get(1)

	p, err := sess.UpdateSettings(func(p settings.Profile) (settings.Profile, error) {
		return p.WithMode(settings.ModeRemote), nil
	})
	require.NoError(t, err)
	assert.Equal(t, settings.ModeRemote, p.Mode)

	boom := errors.New("boom")
	p, err = sess.UpdateSettings(func(p settings.Profile) (settings.Profile, error) {
		return p.WithMode(settings.ModeLocal), boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, settings.ModeRemote, p.Mode)
	assert.Equal(t, settings.ModeRemote, sess.Settings().Mode)
}

func TestNewStore_CustomDefaults(t *testing.T) {
	defaults := settings.Defaults().WithMode(settings.ModeRemote)
	s := NewStore(Config{Defaults: defaults}, nil)
	t.Cleanup(s.Close)

	assert.Equal(t, settings.ModeRemote, s.Get(7).Settings().Mode)
}
