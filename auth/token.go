package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"messenger-lab/errors"
)

// ResumeClaims is the payload of a session resumption token. The token
// is issued at login and lets a client re-establish its session after a
// page reload without storing the password. It proves a recent
// successful credential check, nothing more: ban state is re-checked on
// every resume.
type ResumeClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies resumption tokens with an HMAC secret
// loaded from configuration.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) TokenIssuer {
	return TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Generate creates a signed resumption token for a user.
func (i TokenIssuer) Generate(userID, username string) (string, error) {
	now := time.Now()
	claims := &ResumeClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "messenger-lab",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return signed, nil
}

// Validate parses a token string and checks its signature and expiry.
func (i TokenIssuer) Validate(tokenString string) (*ResumeClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ResumeClaims{}, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*ResumeClaims)
	if !ok || !token.Valid {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}
