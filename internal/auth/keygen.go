package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// API keys are fixed-length strings over a defined alphabet, generated with
// a CSPRNG. The first KeyPrefixLen characters are stored in the clear as a
// lookup prefix; the full key is stored only as an argon2id hash.
const (
	KeyLength    = 32
	KeyPrefixLen = 6
	keyAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// keyFormatRegex validates presented keys before any database work.
var keyFormatRegex = regexp.MustCompile(`^[A-Za-z0-9]{32}$`)

// GeneratedKey contains the parts of a newly generated API key.
type GeneratedKey struct {
	Plaintext string // Full key (show once only)
	Hash      string // Argon2id hash for storage
	Prefix    string // Visible prefix for candidate lookup
}

// GenerateKey creates a new random API key.
// Returns the plaintext (to show once), hash (to store) and prefix (for lookup).
func GenerateKey() (*GeneratedKey, error) {
	buf := make([]byte, KeyLength)
	max := big.NewInt(int64(len(keyAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return nil, fmt.Errorf("generate key: %w", err)
		}
		buf[i] = keyAlphabet[n.Int64()]
	}
	plaintext := string(buf)

	hash, err := HashPassword(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hash key: %w", err)
	}

	return &GeneratedKey{
		Plaintext: plaintext,
		Hash:      hash,
		Prefix:    plaintext[:KeyPrefixLen],
	}, nil
}

// ValidKeyFormat reports whether key matches the expected shape.
func ValidKeyFormat(key string) bool {
	return keyFormatRegex.MatchString(key)
}

// KeyPrefix returns the lookup prefix of a well-formed key.
func KeyPrefix(key string) string {
	return key[:KeyPrefixLen]
}
