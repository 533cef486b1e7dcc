package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	id "rently/pkg/domain"
	"rently/pkg/requestcontext"
)

// JWTValidator resolves a bearer token to a user ID. Kept as an interface so
// handler tests can stub authentication without minting tokens.
type JWTValidator interface {
	Validate(token string) (id.UserID, error)
}

// HS256Validator validates HMAC-signed tokens whose subject is the user ID.
type HS256Validator struct {
	signingKey []byte
}

func NewHS256Validator(signingKey string) *HS256Validator {
	return &HS256Validator{signingKey: []byte(signingKey)}
}

func (v *HS256Validator) Validate(token string) (id.UserID, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.signingKey, nil
	})
	if err != nil {
		return id.UserID{}, err
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return id.UserID{}, err
	}
	return id.ParseUserID(sub)
}

// RequireAuth rejects requests without a valid bearer token and injects the
// resolved user ID into the request context. Role decisions stay out of the
// engine; this middleware only establishes identity.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			userID, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(r.Context(), "rejected bearer token", "error", err.Error())
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}
			ctx := requestcontext.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdminToken gates administrative routes on the X-Admin-Token header.
// The configured value is a bcrypt hash so the cleartext token never lives in
// the environment.
func RequireAdminToken(tokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenHash == "" {
				http.Error(w, "admin API disabled", http.StatusForbidden)
				return
			}
			token := r.Header.Get("X-Admin-Token")
			if token == "" || bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)) != nil {
				logger.WarnContext(r.Context(), "rejected admin token", "path", r.URL.Path)
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
