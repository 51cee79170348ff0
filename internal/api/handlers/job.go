package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/doc-translator/backend/internal/job"
	"github.com/doc-translator/backend/internal/session"
	"github.com/doc-translator/backend/internal/storage"
)

type JobHandler struct {
	sessions *session.Store
	log      *zap.Logger
}

func NewJobHandler(sessions *session.Store, log *zap.Logger) *JobHandler {
	return &JobHandler{sessions: sessions, log: log}
}

type jobResponse struct {
	Job    job.Snapshot `json:"job"`
	Notice *Notice      `json:"notice,omitempty"`
}

// GetJob returns the current job. The first poll that sees a run complete
// carries the completion notice; later polls do not.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}

	snap, completed := sess.Job.Poll()
	resp := jobResponse{Job: snap}
	if completed {
		resp.Notice = info("Translation completed", "Your document has been translated successfully.")
	}
	jsonResponse(w, resp, http.StatusOK)
}

func (h *JobHandler) StartJob(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}

	snap, err := sess.Job.Start()
	if err != nil {
		jobError(w, err)
		return
	}
	jsonResponse(w, jobResponse{Job: snap}, http.StatusAccepted)
}

// CancelJob stops a running job and resets it to idle.
func (h *JobHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}

	snap, err := sess.Job.Cancel()
	if err != nil {
		jobError(w, err)
		return
	}
	jsonResponse(w, jobResponse{Job: snap, Notice: info("Translation cancelled", "")}, http.StatusOK)
}

// Download returns the placeholder output of a completed job.
func (h *JobHandler) Download(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}

	format, err := storage.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, "format must be pdf or docx", http.StatusBadRequest)
		return
	}

	snap := sess.Job.Snapshot()
	if snap.Phase != job.PhaseComplete || snap.Document == nil {
		jsonError(w, "translation is not complete", http.StatusConflict)
		return
	}

	blob, err := storage.Placeholder(format, snap.Document.Name, time.Now())
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.log.Info("download", zap.Int64("user_id", sess.UserID), zap.String("file", blob.Name))
	attachment(w, blob.Name, blob.ContentType, blob.Data)
}

func jobError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, job.ErrNoDocument):
		jsonErrorNotice(w, err.Error(), http.StatusConflict, warning("No document", "Please upload a .doc or .docx file first"))
	case errors.Is(err, job.ErrAlreadyRunning),
		errors.Is(err, job.ErrAlreadyComplete),
		errors.Is(err, job.ErrNotRunning):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, job.ErrClosed):
		// the session was dropped while this request held it
		jsonError(w, "session ended, retry the request", http.StatusConflict)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}
