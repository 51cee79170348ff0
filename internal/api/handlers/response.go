package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/doc-translator/backend/internal/api/middleware"
	"github.com/doc-translator/backend/internal/session"
	"github.com/doc-translator/backend/internal/storage"
)

// Notice is a toast the UI shows as-is.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Variant     string `json:"variant"` // default, destructive
}

func info(title, description string) *Notice {
	return &Notice{Title: title, Description: description, Variant: "default"}
}

func warning(title, description string) *Notice {
	return &Notice{Title: title, Description: description, Variant: "destructive"}
}

func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	jsonResponse(w, map[string]string{"error": msg}, status)
}

// jsonErrorNotice is jsonError with a toast attached.
func jsonErrorNotice(w http.ResponseWriter, msg string, status int, n *Notice) {
	jsonResponse(w, map[string]interface{}{"error": msg, "notice": n}, status)
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// currentSession resolves the session of the authenticated user. It writes a
// 401 and returns nil when the request carries no claims.
func currentSession(w http.ResponseWriter, r *http.Request, store *session.Store) *session.Session {
	claims := middleware.GetClaims(r)
	if claims == nil {
		jsonError(w, "unauthorized", http.StatusUnauthorized)
		return nil
	}
	return store.Get(claims.UserID)
}

var errNoFile = errors.New(`missing "file" field`)

type upload struct {
	Name     string
	MIMEType string
	Size     int64
	Data     []byte // only when read with keep
}

// readUpload streams the multipart field "file" from the request, limited to
// maxBytes. Unless keep is set the content is counted and discarded, so
// large uploads never hit memory or disk.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64, keep bool) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errNoFile
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}
		defer part.Close()
		return consumePart(part, keep)
	}
}

func consumePart(part *multipart.Part, keep bool) (*upload, error) {
	u := &upload{Name: part.FileName(), MIMEType: part.Header.Get("Content-Type")}
	if keep {
		data, err := io.ReadAll(part)
		if err != nil {
			return nil, err
		}
		u.Data = data
		u.Size = int64(len(data))
		return u, nil
	}
	n, err := io.Copy(io.Discard, part)
	if err != nil {
		return nil, err
	}
	u.Size = n
	return u, nil
}

// uploadError maps a readUpload failure to a response.
func uploadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		jsonErrorNotice(w, "file too large", http.StatusRequestEntityTooLarge,
			warning("File too large", "The file exceeds the upload limit"))
	case errors.Is(err, errNoFile), errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		jsonError(w, "expected a multipart upload with a file field", http.StatusBadRequest)
	default:
		jsonError(w, "failed to read upload", http.StatusBadRequest)
	}
}

// fileTypeError answers a rejected upload with 415 and a toast naming the
// accepted extensions.
func fileTypeError(w http.ResponseWriter, err error) {
	hint := "Unsupported file"
	var ite *storage.InvalidFileTypeError
	if errors.As(err, &ite) {
		hint = ite.Hint()
	}
	jsonErrorNotice(w, err.Error(), http.StatusUnsupportedMediaType, warning("Invalid file type", hint))
}

// attachment writes data as a file download.
func attachment(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
