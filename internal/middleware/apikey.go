package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/notevault/notevault/internal/auth"
	"github.com/notevault/notevault/internal/model"
)

// APIKeyHeader is the header service clients present their key in.
const APIKeyHeader = "X-API-Key"

// minAuthDuration is the minimum time spent on a failed key check, so
// rejection timing does not reveal how far verification got.
const minAuthDuration = 200 * time.Millisecond

// KeyResolver looks up candidate API keys by their lookup prefix.
type KeyResolver interface {
	GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*model.APIKey, error)
}

// IdentityCache caches resolved identities for verified keys.
// Implemented by cache.Cache; nil disables caching.
type IdentityCache interface {
	GetIdentity(ctx context.Context, cacheKey string) (*model.Identity, error)
	SetIdentity(ctx context.Context, cacheKey string, id *model.Identity) error
}

// APIKeyConfig holds configuration for the API-key middleware.
type APIKeyConfig struct {
	Logger *slog.Logger
	Keys   KeyResolver
	Cache  IdentityCache
}

// APIKey returns a middleware that authenticates requests carrying an
// X-API-Key header. The presented key is verified against stored argon2id
// hashes found via its lookup prefix; every failure mode produces the
// same 401. The resolved identity is attached to the request context but
// handlers behind this gate do not need it to grant access.
func APIKey(cfg APIKeyConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			authenticated := false

			// Equalize rejection timing
			defer func() {
				if authenticated {
					return
				}
				elapsed := time.Since(startTime)
				if elapsed < minAuthDuration {
					time.Sleep(minAuthDuration - elapsed)
				}
			}()

			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				logAPIKeyFailure(cfg.Logger, r, "missing_key")
				writeAPIKeyError(w)
				return
			}

			if !auth.ValidKeyFormat(key) {
				logAPIKeyFailure(cfg.Logger, r, "invalid_format")
				writeAPIKeyError(w)
				return
			}

			cacheKey := auth.QuickHash(key)
			if cfg.Cache != nil {
				identity, _ := cfg.Cache.GetIdentity(r.Context(), cacheKey)
				if identity != nil {
					authenticated = true
					ctx := auth.ContextWithIdentity(r.Context(), identity)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			candidates, err := cfg.Keys.GetAPIKeysByPrefix(r.Context(), auth.KeyPrefix(key))
			if err != nil {
				cfg.Logger.Error("database error during API key auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAPIKeyError(w)
				return
			}

			// Verify against each candidate (handles prefix collisions)
			var matched *model.APIKey
			for _, candidate := range candidates {
				ok, err := auth.VerifyPassword(key, candidate.KeyHash)
				if err != nil {
					continue
				}
				if ok {
					matched = candidate
					break
				}
			}

			if matched == nil {
				logAPIKeyFailure(cfg.Logger, r, "invalid_key")
				writeAPIKeyError(w)
				return
			}

			identity := &model.Identity{
				UserID: matched.OwnerID,
				KeyID:  matched.ID,
			}

			if cfg.Cache != nil {
				_ = cfg.Cache.SetIdentity(r.Context(), cacheKey, identity)
			}

			cfg.Logger.Info("API key authentication successful",
				slog.Int64("key_id", identity.KeyID),
				slog.Int64("user_id", identity.UserID),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			authenticated = true
			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func logAPIKeyFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("API key authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAPIKeyError writes a 401 Unauthorized response.
// Uses the same message for all failures to prevent enumeration.
func writeAPIKeyError(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "INVALID_API_KEY", "Invalid or missing API key")
}
