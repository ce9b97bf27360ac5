package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// contextKey is an unexported type used for context keys in this package, so
// no other package can read or shadow the identity.
type contextKey string

const identityKey contextKey = "identity"

// HeaderConfig says where RequireAuth looks for the token.
type HeaderConfig struct {
	Name   string // e.g. "Authorization"
	Scheme string // e.g. "Bearer", matched case-insensitively
}

// DefaultHeader is "Authorization: Bearer <token>".
var DefaultHeader = HeaderConfig{Name: "Authorization", Scheme: "Bearer"}

var errMissingToken = errors.New("auth: missing token")

// RequireAuth enforces authentication on gated routes.
//
// It reads the configured header, strips the scheme prefix, validates the
// token and stores the Identity in the request context. On any failure it
// writes 401 and stops the chain. Nothing is kept between requests.
func RequireAuth(tokens *TokenService, header HeaderConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractIdentity(r, tokens, header)
			if err != nil {
				logger.Debug("rejected request", "path", r.URL.Path, "error", err)
				writeUnauthorized(w, unauthorizedMessage(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the authenticated identity.
// Returns (Identity{}, false) on routes that are not gated.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.ID != 0
}

func extractIdentity(r *http.Request, tokens *TokenService, header HeaderConfig) (Identity, error) {
	raw := strings.TrimSpace(r.Header.Get(header.Name))
	if raw == "" {
		return Identity{}, errMissingToken
	}

	token := raw
	if header.Scheme != "" {
		prefix, rest, ok := strings.Cut(raw, " ")
		if !ok || !strings.EqualFold(prefix, header.Scheme) {
			return Identity{}, errMissingToken
		}
		token = strings.TrimSpace(rest)
	}
	if token == "" {
		return Identity{}, errMissingToken
	}

	return tokens.Validate(token)
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, errMissingToken):
		return "missing authorization token"
	case errors.Is(err, ErrTokenExpired):
		return "token has expired"
	default:
		return "invalid authorization token"
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": msg,
	})
}
