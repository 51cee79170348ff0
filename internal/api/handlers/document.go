package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/doc-translator/backend/internal/job"
	"github.com/doc-translator/backend/internal/session"
	"github.com/doc-translator/backend/internal/storage"
)

type DocumentHandler struct {
	sessions *session.Store
	maxBytes int64
	log      *zap.Logger
}

func NewDocumentHandler(sessions *session.Store, maxBytes int64, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{sessions: sessions, maxBytes: maxBytes, log: log}
}

// Upload selects a new document. The content is read and thrown away; only
// its metadata is kept. Any running job is cancelled and reset.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}

	up, err := readUpload(w, r, h.maxBytes, false)
	if err != nil {
		uploadError(w, err)
		return
	}

	mimeType, err := storage.CheckDocument(up.Name, up.MIMEType)
	if err != nil {
		h.log.Info("document rejected", zap.Int64("user_id", sess.UserID), zap.Error(err))
		fileTypeError(w, err)
		return
	}

	snap := sess.Job.SelectDocument(job.Document{
		Name:     up.Name,
		MIMEType: mimeType,
		Size:     up.Size,
	})
	jsonResponse(w, map[string]interface{}{
		"job":    snap,
		"notice": info("File uploaded successfully", up.Name),
	}, http.StatusOK)
}

// Clear removes the selected document.
func (h *DocumentHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}
	jsonResponse(w, map[string]interface{}{"job": sess.Job.ClearDocument()}, http.StatusOK)
}
