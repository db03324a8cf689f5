// Package auth guards the HTTP surface: customer routes carry an HS256
// bearer token whose subject is the user id, admin routes an API key.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("authorization header is missing")
	ErrInvalidToken = errors.New("invalid or expired token")
)

type contextKey struct{}

// IssueToken signs a token for userID valid for ttl.
func IssueToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a raw token and returns its subject.
func ParseToken(secret, raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}

	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(raw), nil
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserIDFrom returns the authenticated user id placed by RequireUser.
func UserIDFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(contextKey{}).(string)
	return userID, ok && userID != ""
}

// RequireUser rejects requests without a valid bearer token and stores the
// token subject in the request context.
func RequireUser(secret string, onError func(http.ResponseWriter, int, string), next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			onError(w, http.StatusUnauthorized, err.Error())
			return
		}

		userID, err := ParseToken(secret, raw)
		if err != nil {
			onError(w, http.StatusUnauthorized, err.Error())
			return
		}

		next(w, r.WithContext(WithUserID(r.Context(), userID)))
	}
}

// RequireAPIKey guards the back-office routes. An empty key disables them.
func RequireAPIKey(key string, onError func(http.ResponseWriter, int, string), next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if key == "" {
			onError(w, http.StatusForbidden, "admin API disabled")
			return
		}

		got := r.Header.Get("X-API-KEY")
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			onError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next(w, r)
	}
}
