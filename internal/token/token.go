package token

import (
	"fmt"
	"time"

	"github.com/caitlinwade/lumen/backend/internal/apperrors"
	"github.com/golang-jwt/jwt/v4"
)

// Claims are the custom claims carried by an access token.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Service issues and verifies signed access tokens. The signing key and TTL
// are fixed at construction; tokens are stateless, so a token stays valid
// until its expiry even if the user it names is deleted in the meantime.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a token Service with the given signing secret and
// token lifetime.
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token embedding the user id, expiring after the
// configured TTL.
func (s *Service) Issue(userID uint) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry and returns the embedded
// user id. Any failure (bad signature, malformed payload, expiry) is
// reported as ErrUnauthorized; no database lookup happens here.
func (s *Service) Verify(tokenString string) (uint, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return 0, apperrors.ErrUnauthorized
	}
	if claims.UserID == 0 {
		return 0, apperrors.ErrUnauthorized
	}
	return claims.UserID, nil
}
