package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/bimakw/coin-portfolio/internal/domain/apperrors"
	"github.com/bimakw/coin-portfolio/internal/domain/entities"
)

// Principal is the authenticated caller of a request
type Principal struct {
	UserID            string `json:"user_id"`
	PreferredCurrency string `json:"preferred_currency"`
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller set by Authenticator
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// TokenVerifier decodes session tokens issued by the account service
type TokenVerifier struct {
	keys []*fernet.Key
	ttl  time.Duration
}

// NewTokenVerifier parses base64 Fernet keys; the first key is the primary one
func NewTokenVerifier(keys []string, ttl time.Duration) (*TokenVerifier, error) {
	if len(keys) == 0 {
		return nil, errors.New("at least one fernet key is required")
	}
	decoded, err := fernet.DecodeKeys(keys...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet keys: %w", err)
	}
	return &TokenVerifier{keys: decoded, ttl: ttl}, nil
}

// Verify checks the token signature and age and returns its principal
func (v *TokenVerifier) Verify(token string) (Principal, error) {
	msg := fernet.VerifyAndDecrypt([]byte(token), v.ttl, v.keys)
	if msg == nil {
		return Principal{}, apperrors.ErrUnauthorized
	}

	var p Principal
	if err := json.Unmarshal(msg, &p); err != nil || strings.TrimSpace(p.UserID) == "" {
		return Principal{}, apperrors.ErrUnauthorized
	}
	p.PreferredCurrency = entities.NormalizeCurrency(p.PreferredCurrency)
	return p, nil
}

// Issue signs a principal with the primary key. Used by tests and local tooling.
func (v *TokenVerifier) Issue(p Principal) (string, error) {
	msg, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	tok, err := fernet.EncryptAndSign(msg, v.keys[0])
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(tok), nil
}

// Authenticator rejects requests without a valid bearer token
func Authenticator(verifier *TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				unauthorized(w, "Missing bearer token")
				return
			}

			p, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, message)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
