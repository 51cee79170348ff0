package handlers

import (
	"errors"
	"net/http"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/doc-translator/backend/internal/api/middleware"
	"github.com/doc-translator/backend/internal/auth"
	"github.com/doc-translator/backend/internal/db"
	"github.com/doc-translator/backend/internal/db/models"
	"github.com/doc-translator/backend/internal/session"
)

var startTime = time.Now()

type AdminHandler struct {
	users    UserStore
	sessions *session.Store
	limiter  *middleware.RateLimiter
	log      *zap.Logger
}

func NewAdminHandler(users UserStore, sessions *session.Store, limiter *middleware.RateLimiter, log *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, sessions: sessions, limiter: limiter, log: log}
}

// ListUsers returns all accounts
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers()
	if err != nil {
		h.log.Error("failed to list users", zap.Error(err))
		jsonError(w, "failed to list users", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	jsonResponse(w, users, http.StatusOK)
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		jsonError(w, "username and password are required", http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if !models.ValidRole(req.Role) {
		jsonError(w, "role must be one of: admin, user", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		jsonError(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	id, err := h.users.CreateUser(req.Username, hash, req.Role)
	if errors.Is(err, db.ErrUserExists) {
		jsonError(w, "username already exists", http.StatusConflict)
		return
	}
	if err != nil {
		h.log.Error("failed to create user", zap.String("username", req.Username), zap.Error(err))
		jsonError(w, "failed to create user", http.StatusInternalServerError)
		return
	}

	h.log.Info("user created", zap.Int64("user_id", id), zap.String("username", req.Username), zap.String("role", req.Role))
	jsonResponse(w, map[string]interface{}{"id": id, "username": req.Username, "role": req.Role}, http.StatusCreated)
}

// DashboardStats returns process stats for the admin page.
func (h *AdminHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	users, _ := h.users.ListUsers()

	jsonResponse(w, map[string]interface{}{
		"system": map[string]interface{}{
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"mem_alloc":      mem.Alloc,
			"mem_sys":        mem.Sys,
		},
		"active_sessions": h.sessions.Len(),
		"user_count":      len(users),
	}, http.StatusOK)
}

func (h *AdminHandler) RateLimitStatus(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, h.limiter.Status(), http.StatusOK)
}

func (h *AdminHandler) ClearRateLimit(w http.ResponseWriter, r *http.Request) {
	h.limiter.Clear()
	w.WriteHeader(http.StatusNoContent)
}
