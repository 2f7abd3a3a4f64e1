package middleware

import (
	"context"
	"net/http"
	"strings"

	"resto-collect/internal/auth"
	"resto-collect/internal/model"

	"github.com/rs/zerolog"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Validate(token string) (*auth.Claims, error)
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the identity stored by Authenticate.
func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	return identity, ok
}

// Authenticate validates the bearer token from the Authorization header and
// stores the caller's identity in the request context. Browsers cannot set
// headers on websocket upgrades, so the token may also be passed as the
// access_token query parameter.
func Authenticate(verifier TokenVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "missing bearer token")
				return
			}

			claims, err := verifier.Validate(token)
			if err != nil {
				logger.Warn().
					Err(err).
					Str("path", r.URL.Path).
					Str("token_prefix", prefix(token, 8)).
					Msg("invalid bearer token")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "invalid or expired token")
				return
			}

			identity, err := claims.Identity()
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("token subject is not a user id")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}
