package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/notevault/notevault/internal/auth"
	"github.com/notevault/notevault/internal/handler/dto"
	"github.com/notevault/notevault/internal/repository"
	"github.com/notevault/notevault/internal/service"
)

// AccountHandler handles HTTP requests for accounts and sessions.
type AccountHandler struct {
	svc    *service.AccountService
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		svc:    svc,
		logger: logger,
	}
}

// Token handles POST /api/v1/token.
// Credentials arrive form-encoded, OAuth2 password-flow style.
func (h *AccountHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid form body")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		h.writeCredentialsError(w)
		return
	}

	token, err := h.svc.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Warn("login_failed",
				"username", username,
				"ip", r.RemoteAddr,
			)
			h.writeCredentialsError(w)
			return
		}
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("login_succeeded", "username", username)

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Register handles POST /api/v1/users.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_registered",
		"user_id", user.ID,
		"username", user.Username,
	)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Me handles GET /api/v1/users/me.
// The first call for an account with no API keys provisions one; that
// response is the only place the plaintext key ever appears.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	profile, err := h.svc.Profile(r.Context(), user)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if profile.PlaintextKey != "" {
		h.logger.Info("api_key_provisioned", "user_id", user.ID)
	}

	writeJSON(w, http.StatusOK, dto.ToProfileResponse(profile.User, profile.Keys, profile.PlaintextKey))
}

// DeleteMe handles DELETE /api/v1/users/me.
func (h *AccountHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), user.ID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_deleted", "user_id", user.ID)

	w.WriteHeader(http.StatusNoContent)
}

// writeCredentialsError writes the uniform login rejection with the
// bearer challenge.
func (h *AccountHandler) writeCredentialsError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect username or password")
}

// handleServiceError maps account service errors to HTTP responses.
func (h *AccountHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "EMAIL_TAKEN", "Email already registered")
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "USERNAME_TAKEN", "Username already taken")
	case errors.Is(err, repository.ErrUserNotFound):
		// The account vanished between authentication and the operation.
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
