// Package mw contains HTTP middleware for the threadcutter-api.
package mw

import (
	"context"
	"net/http"
	"strings"

	"github.com/threadcutter/threadcutter-api/internal/auth"
	"github.com/threadcutter/threadcutter-api/internal/identity"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// UserClaimsKey is the context key for user claims.
	UserClaimsKey ContextKey = "user_claims"

	// IdentityKey is the context key for the resolved quota identity.
	IdentityKey ContextKey = "quota_identity"
)

// UserClaims represents the verified claims of a signed-in user.
type UserClaims struct {
	UserID string
	Email  string
	Name   string
}

// Identity returns a middleware that resolves the quota identity for every
// request. A valid bearer token wins; anonymous requests are fingerprinted
// from the device signal headers. Invalid tokens are rejected rather than
// silently downgraded to a device identity, so a client with an expired
// session gets a 401 instead of a surprise guest quota.
func Identity(verifier *auth.Verifier, provider identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			var userID string
			if token != "" {
				claims, err := verifier.VerifyToken(token)
				if err != nil {
					http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
					return
				}
				userID = claims.UserID
				ctx = context.WithValue(ctx, UserClaimsKey, &UserClaims{
					UserID: claims.UserID,
					Email:  claims.Email,
					Name:   claims.Name,
				})
			}

			ident := provider.Resolve(userID, deviceInfo(r))
			ctx = context.WithValue(ctx, IdentityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser returns middleware that rejects anonymous requests. It must
// run after Identity.
func RequireUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetUserClaims(r.Context()) == nil {
				http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserClaims retrieves user claims from context, or nil for anonymous
// requests.
func GetUserClaims(ctx context.Context) *UserClaims {
	claims, ok := ctx.Value(UserClaimsKey).(*UserClaims)
	if !ok {
		return nil
	}
	return claims
}

// GetIdentity retrieves the resolved quota identity from context.
func GetIdentity(ctx context.Context) identity.Identity {
	ident, ok := ctx.Value(IdentityKey).(identity.Identity)
	if !ok {
		return identity.Identity{}
	}
	return ident
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return authHeader
}

// deviceInfo collects the client-reported environment signals used for
// anonymous fingerprinting. User-Agent and Accept-Language come from the
// standard headers; the rest are reported explicitly by the web client.
func deviceInfo(r *http.Request) identity.DeviceInfo {
	return identity.DeviceInfo{
		UserAgent: r.UserAgent(),
		Language:  r.Header.Get("Accept-Language"),
		Timezone:  r.Header.Get("X-Device-Timezone"),
		Screen:    r.Header.Get("X-Device-Screen"),
		Platform:  r.Header.Get("X-Device-Platform"),
	}
}
