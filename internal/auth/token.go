package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// ErrInvalidCredentials is the single failure returned for every bearer-token
// verification problem: bad signature, malformed payload, missing subject,
// expiry, unknown algorithm. Callers must not be able to tell these apart.
var ErrInvalidCredentials = errors.New("could not validate credentials")

// Symmetric signing algorithms accepted by NewTokenIssuer.
var signingMethods = map[string]jwt.SigningMethod{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// TokenConfig holds everything the issuer needs. It is passed in explicitly
// at construction; there is no ambient signing state.
type TokenConfig struct {
	// Secret is the server-held symmetric signing key.
	Secret []byte
	// Algorithm is the JWT signing algorithm identifier (HS256, HS384, HS512).
	Algorithm string
	// TTL is the default token lifetime used by IssueDefault.
	TTL time.Duration
}

// TokenIssuer mints and verifies signed, time-limited bearer tokens.
// Tokens are never persisted: validity is a pure function of signature
// and wall clock, so restarts do not invalidate outstanding tokens and
// there is no revocation before expiry.
type TokenIssuer struct {
	cfg    TokenConfig
	method jwt.SigningMethod
}

// NewTokenIssuer validates the config and returns a TokenIssuer.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token issuer: empty signing secret")
	}
	method, ok := signingMethods[cfg.Algorithm]
	if !ok {
		return nil, fmt.Errorf("token issuer: unsupported algorithm %q", cfg.Algorithm)
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token issuer: non-positive default TTL")
	}
	return &TokenIssuer{cfg: cfg, method: method}, nil
}

// Issue mints a token for subject expiring exactly ttl from now.
// A zero or negative ttl produces an already-expired token.
func (i *TokenIssuer) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        ulid.Make().String(),
	}

	token, err := jwt.NewWithClaims(i.method, claims).SignedString(i.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// IssueDefault mints a token with the configured default TTL.
func (i *TokenIssuer) IssueDefault(subject string) (string, error) {
	return i.Issue(subject, i.cfg.TTL)
}

// Verify checks signature and expiry and returns the subject claim.
// Every failure collapses into ErrInvalidCredentials.
func (i *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.cfg.Secret, nil },
		jwt.WithValidMethods([]string{i.cfg.Algorithm}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidCredentials
	}

	if claims.Subject == "" {
		return "", ErrInvalidCredentials
	}

	return claims.Subject, nil
}
