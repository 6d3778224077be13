package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/reels/pkg/jwtx"
	"github.com/aussiebroadwan/reels/pkg/slogx"
)

// RevocationChecker reports whether a token id has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthnMiddleware verifies the bearer token and injects its claims into the
// request context. When revoked is non-nil, revoked tokens are rejected.
func AuthnMiddleware(v jwtx.Verifier, revoked RevocationChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}

			if err := claims.ValidateExpiry(); err != nil {
				writeBearerError(w, "token expired")
				return
			}

			if revoked != nil {
				gone, err := revoked.IsRevoked(ctx, claims.ID)
				if err != nil {
					log.Error("revocation lookup failed", "err", err)
					WriteMessage(w, http.StatusInternalServerError, "internal error")
					return
				}
				if gone {
					writeBearerError(w, "token revoked")
					return
				}
			}

			ctx = contextWithAuth(ctx, claims, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims, raw string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	ctx = context.WithValue(ctx, ctxKeyRawToken, raw)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteMessage(w, http.StatusUnauthorized, desc)
}
