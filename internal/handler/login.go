package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/artfolio/internal/auth"
)

// LoginHandler exchanges the admin password for a session cookie.
type LoginHandler struct {
	passwords    *auth.PasswordService
	tokens       *auth.TokenService
	passwordHash string
	logger       *slog.Logger
}

// NewLoginHandler creates a LoginHandler for the configured admin
// credential.
func NewLoginHandler(passwords *auth.PasswordService, tokens *auth.TokenService, passwordHash string, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		passwords:    passwords,
		tokens:       tokens,
		passwordHash: passwordHash,
		logger:       logger,
	}
}

// HandleLogin verifies the admin password and sets the session cookie.
//
// HTTP: POST /auth/login
// BODY: {"password": "..."}
//
// Wrong passwords answer 401 with the same generic message as malformed
// attempts, no oracle for guessing.
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}

	if err := h.passwords.Verify(h.passwordHash, req.Password); err != nil {
		h.logger.Warn("failed admin login attempt")
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "invalid password"})
		return
	}

	token, err := h.tokens.Generate()
	if err != nil {
		h.logger.Error("failed to issue session token", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "could not create session"})
		return
	}

	auth.SetSessionCookie(w, token)
	h.logger.Info("admin logged in")
	w.WriteHeader(http.StatusNoContent)
}
