package httpx

import (
	"context"

	"github.com/aussiebroadwan/reels/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyClaims ctxKey = "claims"
)

// UserIDFromContext returns the authenticated subject set by AuthnMiddleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyUserID).(string)
	return v, ok && v != ""
}

// ClaimsFromContext returns the verified bearer claims set by AuthnMiddleware.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}

// BearerTokenFromContext returns the raw bearer token of the request.
func BearerTokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRawToken).(string)
	return v
}

const ctxKeyRawToken ctxKey = "raw_token"
