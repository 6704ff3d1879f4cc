// Package session handles password login and session token issuance.
package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"brandmark/internal/auth"
	"brandmark/internal/http-server/handler/batch/dto"

	"github.com/wb-go/wbf/zlog"
)

type SessionHandler struct {
	passwordHash string
	tokens       *auth.TokenManager
	logger       *zlog.Zerolog
}

func NewSessionHandler(passwordHash string, tokens *auth.TokenManager, logger *zlog.Zerolog) *SessionHandler {
	return &SessionHandler{
		passwordHash: passwordHash,
		tokens:       tokens,
		logger:       logger,
	}
}

// Login verifies the app password and returns a session token. The reason
// for a rejection is never detailed to the client.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		h.respondError(w, http.StatusBadRequest, "Password is required")
		return
	}

	if err := auth.VerifyPassword(req.Password, h.passwordHash); err != nil {
		if errors.Is(err, auth.ErrInvalidHash) {
			h.logger.Error().Msg("Configured password hash is malformed")
		} else {
			h.logger.Warn().Msg("Failed login attempt")
		}
		h.respondError(w, http.StatusUnauthorized, "Incorrect password")
		return
	}

	token, expiresAt, err := h.tokens.Issue()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to issue session token")
		h.respondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	h.logger.Info().Msg("Session opened")
	h.respondJSON(w, http.StatusOK, dto.LoginResponse{Token: token, ExpiresAt: expiresAt})
}

func (h *SessionHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *SessionHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
