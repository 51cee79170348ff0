package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/doc-translator/backend/internal/session"
	"github.com/doc-translator/backend/internal/settings"
	"github.com/doc-translator/backend/internal/storage"
)

type SettingsHandler struct {
	sessions      *session.Store
	maxModelBytes int64
	log           *zap.Logger
}

func NewSettingsHandler(sessions *session.Store, maxModelBytes int64, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{sessions: sessions, maxModelBytes: maxModelBytes, log: log}
}

type settingsResponse struct {
	Settings settings.Profile `json:"settings"`
	Notice   *Notice          `json:"notice,omitempty"`
}

// GetSettings returns the profile with the API key masked.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}
	jsonResponse(w, settingsResponse{Settings: sess.Settings().Masked()}, http.StatusOK)
}

func (h *SettingsHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}

	var req struct {
		Mode string `json:"mode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	mode, err := settings.ParseMode(req.Mode)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, _ := sess.UpdateSettings(func(p settings.Profile) (settings.Profile, error) {
		return p.WithMode(mode), nil
	})
	jsonResponse(w, settingsResponse{Settings: p.Masked()}, http.StatusOK)
}

// UpdateLocal applies field updates to the local model configuration. The
// body is a flat object keyed by field name; all fields apply or none do.
func (h *SettingsHandler) UpdateLocal(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}

	updates, err := fieldUpdates(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := sess.UpdateSettings(func(p settings.Profile) (settings.Profile, error) {
		l, err := settings.Apply(p.Local, updates)
		if err != nil {
			return p, err
		}
		return p.WithLocal(l), nil
	})
	if err != nil {
		fieldError(w, err)
		return
	}
	jsonResponse(w, settingsResponse{Settings: p.Masked()}, http.StatusOK)
}

func (h *SettingsHandler) UpdateRemote(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}

	updates, err := fieldUpdates(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := sess.UpdateSettings(func(p settings.Profile) (settings.Profile, error) {
		rem, err := settings.Apply(p.Remote, updates)
		if err != nil {
			return p, err
		}
		return p.WithRemote(rem), nil
	})
	if err != nil {
		fieldError(w, err)
		return
	}
	jsonResponse(w, settingsResponse{Settings: p.Masked()}, http.StatusOK)
}

// UploadModel accepts a local model file. The weights are discarded and
// only the file name becomes the model path.
func (h *SettingsHandler) UploadModel(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}

	up, err := readUpload(w, r, h.maxModelBytes, false)
	if err != nil {
		uploadError(w, err)
		return
	}
	if err := storage.CheckModel(up.Name); err != nil {
		fileTypeError(w, err)
		return
	}

	p, err := sess.UpdateSettings(func(p settings.Profile) (settings.Profile, error) {
		l, err := p.Local.With(settings.FieldModelPath, up.Name)
		if err != nil {
			return p, err
		}
		return p.WithLocal(l), nil
	})
	if err != nil {
		fieldError(w, err)
		return
	}

	h.log.Info("model selected", zap.Int64("user_id", sess.UserID), zap.String("model", up.Name), zap.Int64("size", up.Size))
	jsonResponse(w, settingsResponse{
		Settings: p.Masked(),
		Notice:   info("Model uploaded successfully", up.Name),
	}, http.StatusOK)
}

// TestConnection runs the simulated connection check against the stored
// remote configuration. A failure is a normal 200 response with status
// "failed".
func (h *SettingsHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}

	err := settings.CheckConnection(r.Context(), sess.Settings().Remote)
	if err != nil && !errors.Is(err, settings.ErrConnectionFailed) {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		jsonResponse(w, map[string]interface{}{
			"status": "failed",
			"reason": err.Error(),
			"notice": warning("Connection failed", err.Error()),
		}, http.StatusOK)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"status": "ok",
		"notice": info("Connection successful", ""),
	}, http.StatusOK)
}

func (h *SettingsHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, settings.Catalog(), http.StatusOK)
}

// Save validates the profile. Settings live in the session only, so there is
// nothing to write.
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(w, r, h.sessions)
	if sess == nil {
		return
	}

	p := sess.Settings()
	if err := p.Validate(); err != nil {
		fieldError(w, err)
		return
	}
	jsonResponse(w, settingsResponse{
		Settings: p.Masked(),
		Notice:   info("Settings saved successfully", ""),
	}, http.StatusOK)
}

// fieldUpdates reads a flat JSON object of field updates. Numbers are
// accepted as well as strings so clients can send either form.
func fieldUpdates(r *http.Request) (map[string]string, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.New("invalid request body")
	}

	updates := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case string:
			updates[k] = v
		case json.Number:
			updates[k] = v.String()
		default:
			return nil, fmt.Errorf("%s: must be a string or number", k)
		}
	}
	return updates, nil
}

func fieldError(w http.ResponseWriter, err error) {
	var fe *settings.FieldError
	if errors.As(err, &fe) {
		jsonResponse(w, map[string]interface{}{
			"error":  err.Error(),
			"field":  fe.Field,
			"reason": fe.Reason,
		}, http.StatusBadRequest)
		return
	}
	jsonError(w, err.Error(), http.StatusBadRequest)
}
