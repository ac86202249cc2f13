// Package auth verifies bearer tokens issued by the hosted auth service.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrMissingClaims = errors.New("missing required claims")
)

// Claims represents the claims in an auth-service JWT.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"sub"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Verifier verifies HS256 JWTs signed with the shared server secret.
type Verifier struct {
	key    []byte
	issuer string
}

// NewVerifier creates a token verifier. An empty issuer skips the issuer check.
func NewVerifier(key []byte, issuer string) *Verifier {
	return &Verifier{key: key, issuer: issuer}
}

// VerifyToken verifies a JWT and returns the claims.
func (v *Verifier) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, fmt.Errorf("%w: invalid issuer", ErrInvalidToken)
	}

	if claims.UserID == "" {
		return nil, ErrMissingClaims
	}

	return claims, nil
}
