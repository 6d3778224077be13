package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/reels/internal/profile/service"
	"github.com/aussiebroadwan/reels/internal/profile/store"
	"github.com/aussiebroadwan/reels/pkg/httpx"
	"github.com/aussiebroadwan/reels/pkg/jwtx"
	"github.com/aussiebroadwan/reels/pkg/slogx"

	_ "github.com/aussiebroadwan/reels/api/profile" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	limits       httpx.RateLimits
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	ProfileService *service.ProfileService
	TokenService   *service.TokenService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	limits httpx.RateLimits,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		limits:       limits,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerProfile()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Reels Profile Service API
//	@version		0.1.0
//	@description	Profile registration and bearer-token issuance for the Reels app.
//	@description
//	@description				Tokens are EdDSA-signed JWTs and can be verified using the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/reels
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerProfile() {
	h := NewProfileHandler(r.ProfileService)
	authn := httpx.AuthnMiddleware(r.verifier, r.TokenService)

	// GET /profile - lenient rate limit by user (called on every cold start)
	r.Mux.Handle("GET /api/auth/profile",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			authn,
			httpx.RateLimitByUser(r.limits.Lenient),
		),
	)

	// POST /update-profile - moderate rate limit by user
	r.Mux.Handle("POST /api/auth/update-profile",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			authn,
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)

	// POST /register - strict rate limit by IP (public account creation)
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)

	// POST /logout - moderate rate limit by user
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			authn,
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)
}

func (r *Router) registerSystem() {
	sys := NewSystemHandler(r.startTime, r.buildVersion, r.store, r.keys)
	// Each endpoint gets its own limiter.
	public := func(h http.HandlerFunc) http.Handler {
		return httpx.Chain(h, httpx.RateLimitByIP(r.limits.Public))
	}

	r.Mux.Handle("GET /.well-known/jwks.json", public(sys.HandleJWKS))
	r.Mux.Handle("GET /livez", public(sys.HandleLivez))
	r.Mux.Handle("GET /readyz", public(sys.HandleReadyz))
}
