package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/doc-translator/backend/internal/dictionary"
	"github.com/doc-translator/backend/internal/session"
	"github.com/doc-translator/backend/internal/storage"
)

type DictionaryHandler struct {
	sessions *session.Store
	maxBytes int64
	log      *zap.Logger
}

func NewDictionaryHandler(sessions *session.Store, maxBytes int64, log *zap.Logger) *DictionaryHandler {
	return &DictionaryHandler{sessions: sessions, maxBytes: maxBytes, log: log}
}

type wordsResponse struct {
	Words []dictionary.WordPair `json:"words"`
	Count int                   `json:"count"`
}

func (h *DictionaryHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}
	words := sess.Dictionary.List()
	jsonResponse(w, wordsResponse{Words: words, Count: len(words)}, http.StatusOK)
}

// Add appends a manually entered pair.
func (h *DictionaryHandler) Add(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}

	var req dictionary.WordPair
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pair, index, err := sess.Dictionary.Add(req.Original, req.Translation)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"word":  pair,
		"index": index,
	}, http.StatusCreated)
}

func (h *DictionaryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		jsonError(w, "invalid index", http.StatusBadRequest)
		return
	}

	removed, err := sess.Dictionary.Remove(index)
	if errors.Is(err, dictionary.ErrIndexOutOfRange) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]interface{}{"removed": removed}, http.StatusOK)
}

type importResponse struct {
	dictionary.IngestResult
	Count  int     `json:"count"`
	Notice *Notice `json:"notice,omitempty"`
}

// Import ingests an uploaded CSV file. Malformed lines do not fail the
// request; they come back as warnings next to the pairs that were added.
func (h *DictionaryHandler) Import(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}

	up, err := readUpload(w, r, h.maxBytes, true)
	if err != nil {
		uploadError(w, err)
		return
	}
	if err := storage.CheckDictionary(up.Name, up.MIMEType); err != nil {
		fileTypeError(w, err)
		return
	}

	content, err := dictionary.Decode(up.Data)
	if err != nil {
		jsonError(w, "file is not valid text", http.StatusBadRequest)
		return
	}

	res := sess.Dictionary.Ingest(content)
	if res.Warnings == nil {
		res.Warnings = []*dictionary.LineError{}
	}
	h.log.Info("dictionary imported",
		zap.Int64("user_id", sess.UserID),
		zap.String("file", up.Name),
		zap.Int("added", res.Added),
		zap.Int("skipped", len(res.Warnings)),
	)

	resp := importResponse{IngestResult: res, Count: sess.Dictionary.Len()}
	if s := res.Summary(); s != "" {
		resp.Notice = info("Dictionary imported", s)
	}
	jsonResponse(w, resp, http.StatusOK)
}

func (h *DictionaryHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}

	format := dictionary.ExportFormat(strings.ToLower(r.URL.Query().Get("format")))
	if format == "" {
		format = dictionary.ExportCSV
	}
	data, err := dictionary.Export(sess.Dictionary.List(), format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	attachment(w, "special-words."+string(format), format.ContentType(), data)
}
