package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/notevault/notevault/internal/auth"
	"github.com/notevault/notevault/internal/handler/dto"
)

// DatetimeHandler serves the API-key-gated date endpoint.
type DatetimeHandler struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewDatetimeHandler creates a new DatetimeHandler.
func NewDatetimeHandler(logger *slog.Logger) *DatetimeHandler {
	return &DatetimeHandler{
		logger: logger,
		now:    time.Now,
	}
}

// Date handles GET /api/v1/date.
// Requires a valid X-API-Key; the gate attaches the caller's identity.
func (h *DatetimeHandler) Date(w http.ResponseWriter, r *http.Request) {
	if identity := auth.IdentityFromContext(r.Context()); identity != nil {
		h.logger.Info("date_requested",
			"user_id", identity.UserID,
			"key_id", identity.KeyID,
		)
	}

	now := h.now()
	writeJSON(w, http.StatusOK, dto.DateResponse{
		Day:   now.Format("02"),
		Month: now.Format("January"),
		Year:  now.Format("2006"),
		Time:  now.Format("15:04"),
	})
}
