package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/parlor-chat/parlor/internal/api/middleware"
	"github.com/parlor-chat/parlor/internal/archive"
	"github.com/parlor-chat/parlor/internal/chat"
	"github.com/parlor-chat/parlor/internal/metrics"
	"github.com/parlor-chat/parlor/internal/notify"
	"github.com/parlor-chat/parlor/internal/session"
)

// LoginRequest is the login request body. Provider fields are filled in by
// the trusted identity layer for OAuth-style logins; bare logins carry just
// username and optional email.
type LoginRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email,omitempty"`
	Password         string `json:"password,omitempty"`
	DisplayName      string `json:"display_name,omitempty"`
	AvatarURL        string `json:"avatar_url,omitempty"`
	TelegramUsername string `json:"telegram_username,omitempty"`
	Provider         string `json:"provider,omitempty"`
	ProviderID       string `json:"provider_id,omitempty"`
}

// Login resolves or creates the identity, issues a session cookie, and
// mirrors the attempt into the audit trail.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, _, err := h.store.ResolveOrCreate(chat.AuthContext{
		Username:         req.Username,
		Email:            req.Email,
		DisplayName:      req.DisplayName,
		AvatarURL:        req.AvatarURL,
		TelegramUsername: req.TelegramUsername,
		Provider:         req.Provider,
		ProviderID:       req.ProviderID,
	})
	if err != nil {
		h.recordLoginAttempt(r, req.Username, req.Email, false)
		h.StoreError(w, err)
		return
	}

	token, err := h.sessions.Create(r.Context(), user.Username)
	if err != nil {
		h.logger.Error().Err(err).Msg("session create failed")
		h.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(session.DefaultTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.recordLoginAttempt(r, user.Username, user.Email, true)
	h.mirror("save_user", func(ctx context.Context) error {
		hash, err := archive.HashPassword(req.Password)
		if err != nil {
			return err
		}
		return h.arc.SaveUser(ctx, user, hash)
	})

	metrics.Logins.Inc()
	h.notifier.Dispatch(notify.Event{
		Kind:       notify.EventLogin,
		Username:   user.Username,
		Email:      user.Email,
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})

	h.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

// Logout destroys the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	token := middleware.GetSessionToken(r.Context())

	if err := h.sessions.Destroy(r.Context(), token); err != nil {
		h.logger.Warn().Err(err).Msg("session destroy failed")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.notifier.Dispatch(notify.Event{
		Kind:       notify.EventLogout,
		Username:   user.Username,
		Email:      user.Email,
		RemoteAddr: r.RemoteAddr,
	})

	h.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Who returns the public profile for a username.
func (h *Handler) Who(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	user := h.store.Lookup(username)
	if user == nil {
		h.Error(w, http.StatusNotFound, "user not found")
		return
	}
	h.JSON(w, http.StatusOK, user)
}

// NicknameRequest is the nickname change request body.
type NicknameRequest struct {
	Nickname string `json:"nickname"`
}

// Nickname rebinds the authenticated identity to a new key. All historical
// authorship and the session binding move together.
func (h *Handler) Nickname(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	token := middleware.GetSessionToken(r.Context())

	var req NicknameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	oldKey := user.Username
	rebound, err := h.store.Rebind(oldKey, req.Nickname)
	if err != nil {
		h.StoreError(w, err)
		return
	}

	if err := h.sessions.Bind(r.Context(), token, rebound.Username); err != nil {
		h.logger.Error().Err(err).Msg("session rebind failed")
	}
	h.mirror("rename_user", func(ctx context.Context) error {
		return h.arc.RenameUser(ctx, oldKey, rebound.Username)
	})

	metrics.NicknameChanges.Inc()
	h.notifier.Dispatch(notify.Event{
		Kind:        notify.EventNicknameChange,
		OldUsername: oldKey,
		Username:    rebound.Username,
		Email:       rebound.Email,
		RemoteAddr:  r.RemoteAddr,
	})

	h.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    rebound,
	})
}

func (h *Handler) recordLoginAttempt(r *http.Request, username, email string, success bool) {
	h.mirror("login_attempt", func(ctx context.Context) error {
		return h.arc.RecordLoginAttempt(ctx, archive.LoginAttempt{
			Username:    username,
			Email:       email,
			IPAddress:   r.RemoteAddr,
			UserAgent:   r.UserAgent(),
			Success:     success,
			AttemptedAt: time.Now().UTC(),
		})
	})
}
