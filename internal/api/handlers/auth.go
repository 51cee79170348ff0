package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/doc-translator/backend/internal/api/middleware"
	"github.com/doc-translator/backend/internal/auth"
	"github.com/doc-translator/backend/internal/db"
	"github.com/doc-translator/backend/internal/db/models"
	"github.com/doc-translator/backend/internal/session"
)

// UserStore is the account storage used by the handlers. *db.Database
// implements it.
type UserStore interface {
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id int64) (*models.User, error)
	ListUsers() ([]*models.User, error)
	CreateUser(username, passwordHash, role string) (int64, error)
}

type AuthHandler struct {
	users    UserStore
	jwt      *auth.JWTService
	sessions *session.Store
	log      *zap.Logger
}

func NewAuthHandler(users UserStore, jwt *auth.JWTService, sessions *session.Store, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt, sessions: sessions, log: log}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userInfo `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	user, err := h.users.GetUserByUsername(req.Username)
	if err != nil {
		if !errors.Is(err, db.ErrUserNotFound) {
			h.log.Error("login lookup failed", zap.String("username", req.Username), zap.Error(err))
		}
		jsonError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if !auth.CheckPassword(req.Password, user.Password) {
		h.log.Warn("login rejected", zap.String("username", req.Username))
		jsonError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		h.log.Error("failed to sign token", zap.Int64("user_id", user.ID), zap.Error(err))
		jsonError(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	h.log.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	jsonResponse(w, loginResponse{
		Token: token,
		User:  userInfo{ID: user.ID, Username: user.Username, Role: user.Role},
	}, http.StatusOK)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		jsonError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetUserByID(claims.UserID)
	if err != nil {
		jsonError(w, "user not found", http.StatusNotFound)
		return
	}

	jsonResponse(w, userInfo{ID: user.ID, Username: user.Username, Role: user.Role}, http.StatusOK)
}

// Logout ends the in-memory session: the document, job, dictionary and
// settings are discarded. Tokens are stateless and stay valid until expiry;
// the next request simply starts a fresh session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		jsonError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	h.sessions.Drop(claims.UserID)
	w.WriteHeader(http.StatusNoContent)
}
