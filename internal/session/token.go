package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/odyssey-erp/teamhub/internal/shared"
)

const issuer = "teamhub"

// Claims identify a server side session. Expiry is decided by the session
// snapshot, not by the token.
type Claims struct {
	jwt.RegisteredClaims
}

// Signer issues and verifies session tokens.
type Signer struct {
	secret []byte
}

// NewSigner constructs a Signer. The secret must not be empty.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("session: signing secret is empty")
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Issue signs a token naming sessionID and username.
func (s *Signer) Issue(sessionID, username string, issuedAt time.Time) (string, error) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:       sessionID,
		Subject:  username,
		Issuer:   issuer,
		IssuedAt: jwt.NewNumericDate(issuedAt),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its claims.
func (s *Signer) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("session: %v: %w", err, shared.ErrInvalidCredentials)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("session: malformed token: %w", shared.ErrInvalidCredentials)
	}
	return claims, nil
}
