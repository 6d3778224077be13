package profile_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/reels/pkg/jwtx"
)

// TestIssuedTokenVerifiesAgainstJWKS checks a token from /register against
// the published key set, the way a third party would.
func TestIssuedTokenVerifiesAgainstJWKS(t *testing.T) {
	client := setupProfileContainer(t, relaxedLimits())
	ctx := t.Context()

	resp, err := client.Register(ctx, newRegistration("jwks@example.com", ""))
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.BaseURL+"/.well-known/jwks.json", nil)
	require.NoError(t, err)
	httpResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer httpResp.Body.Close()
	require.Equal(t, http.StatusOK, httpResp.StatusCode)

	var jwks jwtx.JWKS
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&jwks))
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "reels-profile-key-001", jwks.Keys[0].Kid)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddJWK(jwks.Keys[0]))

	claims, err := jwtx.NewVerifierEdDSA(keys, testIssuer, nil).Verify(resp.Token)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, claims.Subject)

	parsed, _, err := jwt.NewParser().ParseUnverified(resp.Token, &jwtx.Claims{})
	require.NoError(t, err)
	require.Equal(t, "EdDSA", parsed.Method.Alg())
}
