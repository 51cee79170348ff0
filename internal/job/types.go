package job

import (
	"errors"
	"time"
)

// Phase is the state of the simulated translation run.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhaseComplete Phase = "complete"
)

const (
	DefaultStep     = 10
	DefaultInterval = 500 * time.Millisecond
	maxProgress     = 100
)

var (
	ErrNoDocument      = errors.New("no document selected")
	ErrAlreadyRunning  = errors.New("translation already running")
	ErrAlreadyComplete = errors.New("translation already complete, select a new document")
	ErrNotRunning      = errors.New("translation is not running")
	ErrClosed          = errors.New("tracker closed")
)

// Document is the metadata of the uploaded file. Its bytes are never kept.
type Document struct {
	Name       string    `json:"name"`
	MIMEType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	SelectedAt time.Time `json:"selected_at"`
}

// Snapshot is a point-in-time copy of the tracker state
type Snapshot struct {
	ID          string     `json:"id,omitempty"`
	Phase       Phase      `json:"phase"`
	Progress    int        `json:"progress"`
	Document    *Document  `json:"document,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TickerFunc starts a ticker firing every d and returns its channel and a stop
// function. The stop function is called exactly once per ticker.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}
