package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/notevault/notevault/internal/auth"
	"github.com/notevault/notevault/internal/model"
	"github.com/notevault/notevault/internal/repository"
)

// TokenVerifier validates a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserResolver resolves a token subject to a live user record.
// Unknown subjects are reported as repository.ErrUserNotFound; any other
// error is treated as a backing-store failure.
type UserResolver interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// BearerConfig holds configuration for the bearer-token middleware.
type BearerConfig struct {
	Logger *slog.Logger
	Tokens TokenVerifier
	Users  UserResolver
}

// Bearer returns a middleware that authenticates requests carrying a
// bearer token. On success the resolved user is attached to the request
// context. Every verification failure, including an unknown subject,
// produces the same 401 with a re-authentication challenge; the inactive
// check runs only after identity is established and fails distinctly.
func Bearer(cfg BearerConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logBearerFailure(cfg.Logger, r, "missing_token")
				writeBearerError(w)
				return
			}

			subject, err := cfg.Tokens.Verify(token)
			if err != nil {
				logBearerFailure(cfg.Logger, r, "invalid_token")
				writeBearerError(w)
				return
			}

			user, err := cfg.Users.GetUserByUsername(r.Context(), subject)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					// Unknown subject is indistinguishable from a bad token.
					logBearerFailure(cfg.Logger, r, "unknown_subject")
					writeBearerError(w)
					return
				}
				cfg.Logger.Error("database error during bearer auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
				return
			}

			if !user.Active {
				logBearerFailure(cfg.Logger, r, "inactive_account")
				writeJSONError(w, http.StatusForbidden, "INACTIVE_ACCOUNT", "Inactive user")
				return
			}

			ctx := auth.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func logBearerFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("bearer authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeBearerError writes the uniform 401 for bearer failures.
// The WWW-Authenticate header is the re-authentication challenge.
func writeBearerError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSONError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Could not validate credentials")
}

// writeJSONError writes a JSON error envelope.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}
