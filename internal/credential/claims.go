package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medipro/console/internal/shared"
)

var (
	// ErrTokenMalformed indicates the token could not be decoded at all.
	ErrTokenMalformed = errors.New("credential: malformed token")
	// ErrTokenExpired indicates the token's exp claim is in the past.
	ErrTokenExpired = errors.New("credential: token expired")
)

// Claims is the payload the MediPro API embeds in its bearer tokens.
type Claims struct {
	jwt.RegisteredClaims

	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  shared.Role `json:"role"`
}

// DecodeClaims extracts the claims from a bearer token without verifying
// its signature. Decode failures and expiry are fatal to the session; the
// caller is expected to clear the credential on either error.
func DecodeClaims(token string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing subject id", ErrTokenMalformed)
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}
