// Package auth issues and verifies the signed bearer tokens shared by
// the HTTP API and the real-time hub.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bus-tracker-backend/internal/model"
)

// ErrInvalidToken covers missing, malformed, expired and badly signed tokens.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims are the identity claims carried by a token.
type Claims struct {
	UserID int64      `json:"id"`
	Role   model.Role `json:"role"`
	Name   string     `json:"name"`
	jwt.RegisteredClaims
}

// NewToken signs a token for the given user, valid for ttl.
func NewToken(secret string, user *model.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature and expiry and returns the claims.
func ParseToken(secret, raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
