package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"eventgate/internal/auth"
)

type claimsKey struct{}

// ClaimsFrom returns the verified token claims of the request, if any.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

// requireScope rejects requests without a valid bearer token carrying scope.
// It is a no-op while no JWT secret is configured.
func requireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := jwtSecret
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}
			tok, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				authFailuresTotal.WithLabelValues("missing").Inc()
				w.Header().Set("WWW-Authenticate", `Bearer realm="eventgate"`)
				writeJSONError(w, http.StatusUnauthorized, err.Error())
				return
			}
			claims, err := auth.Parse(secret, tok)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, jwt.ErrTokenExpired) {
					reason = "expired"
				}
				authFailuresTotal.WithLabelValues(reason).Inc()
				w.Header().Set("WWW-Authenticate", `Bearer realm="eventgate", error="invalid_token"`)
				writeJSONError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if !claims.HasScope(scope) {
				authFailuresTotal.WithLabelValues("scope").Inc()
				writeJSONError(w, http.StatusForbidden, "token lacks scope "+scope)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}
