package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/notevault/notevault/internal/repository"
	"github.com/notevault/notevault/internal/service"
)

func TestAccountHandler_ServiceErrorMapping(t *testing.T) {
	h := NewAccountHandler(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid input", fmt.Errorf("%w: username is required", service.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{"email taken", service.ErrEmailTaken, http.StatusBadRequest, "EMAIL_TAKEN"},
		{"username taken", service.ErrUsernameTaken, http.StatusBadRequest, "USERNAME_TAKEN"},
		{"user vanished", repository.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"wrapped user vanished", fmt.Errorf("load profile: %w", repository.ErrUserNotFound), http.StatusNotFound, "USER_NOT_FOUND"},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			h.handleServiceError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if body := rec.Body.String(); !strings.Contains(body, `"code":"`+tt.wantCode+`"`) {
				t.Errorf("body %q missing code %q", body, tt.wantCode)
			}
		})
	}
}
