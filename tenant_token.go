package meilisearch

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TenantTokenClaims is the JWT payload the service expects in a tenant token.
type TenantTokenClaims struct {
	SearchRules any    `json:"searchRules"`
	APIKeyUID   string `json:"apiKeyUid"`
	jwt.RegisteredClaims
}

// TenantTokenOptions configures tenant token generation.
type TenantTokenOptions struct {
	// APIKey is the secret of the parent key identified by apiKeyUid; it
	// signs the token and the service verifies against it.
	APIKey string
	// ExpiresAt bounds the token lifetime. Zero means no expiry.
	ExpiresAt time.Time
}

// GenerateTenantToken signs a tenant token restricting searches to the given
// rules, on behalf of the parent key identified by apiKeyUID. The token is an
// HS256 JWT; the service only needs the signature to match the parent key's
// secret, so generation is fully client-side.
func GenerateTenantToken(apiKeyUID uuid.UUID, searchRules any, opts TenantTokenOptions) (string, error) {
	if apiKeyUID == uuid.Nil {
		return "", errors.New("meilisearch: api key uid required")
	}
	if searchRules == nil {
		return "", errors.New("meilisearch: search rules required")
	}
	if len(opts.APIKey) < 8 {
		return "", errors.New("meilisearch: signing api key too short")
	}
	claims := TenantTokenClaims{
		SearchRules: searchRules,
		APIKeyUID:   apiKeyUID.String(),
	}
	if !opts.ExpiresAt.IsZero() {
		if opts.ExpiresAt.Before(time.Now()) {
			return "", errors.New("meilisearch: token expiry is in the past")
		}
		claims.ExpiresAt = jwt.NewNumericDate(opts.ExpiresAt)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(opts.APIKey))
	if err != nil {
		return "", fmt.Errorf("meilisearch: sign tenant token: %w", err)
	}
	return signed, nil
}
