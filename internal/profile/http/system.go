package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/reels/internal/profile/store"
	"github.com/aussiebroadwan/reels/pkg/httpx"
	"github.com/aussiebroadwan/reels/pkg/jwtx"
	"github.com/aussiebroadwan/reels/pkg/profilesdk"
)

const readinessTimeout = 2 * time.Second

var errNoSigningKey = errors.New("no signing key loaded")

// SystemHandler serves the probe and key discovery endpoints.
type SystemHandler struct {
	started time.Time
	version string
	db      store.Store
	keys    *jwtx.KeySet
}

func NewSystemHandler(started time.Time, version string, db store.Store, keys *jwtx.KeySet) *SystemHandler {
	return &SystemHandler{started: started, version: version, db: db, keys: keys}
}

func (h *SystemHandler) health(status string, checks *profilesdk.HealthChecks) profilesdk.HealthResponse {
	return profilesdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(h.started).Truncate(time.Second).String(),
		Version: h.version,
		Checks:  checks,
	}
}

// HandleLivez godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe endpoint returning basic service health status, uptime, and version information
//	@Description	This endpoint always returns 200 OK if the service is running
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	profilesdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func (h *SystemHandler) HandleLivez(w http.ResponseWriter, r *http.Request) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, h.health("ok", nil))
}

// HandleReadyz godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for the database and token signer
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	profilesdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	profilesdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func (h *SystemHandler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var signerErr error
	if !h.keys.IsReady() {
		signerErr = errNoSigningKey
	}

	checks := &profilesdk.HealthChecks{
		Database: probeResult(h.db.Ping(ctx)),
		Signer:   probeResult(signerErr),
	}

	status, code := "ok", http.StatusOK
	if checks.Database != "ok" || checks.Signer != "ok" {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, code, h.health(status, checks))
}

// HandleJWKS exposes the JSON Web Key Set for public key discovery.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify bearer tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	jwtx.JWKS	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func (h *SystemHandler) HandleJWKS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	httpx.WriteJSON(w, http.StatusOK, h.keys.PublicJWKS())
}

func probeResult(err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
