package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/serplantas/serplantas/internal/service"
	"github.com/serplantas/serplantas/internal/store"
	"github.com/serplantas/serplantas/pkg/httpx"
	"github.com/serplantas/serplantas/pkg/jwtx"
	"github.com/serplantas/serplantas/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService      *service.AuthService
	TwoFactorService *service.TwoFactorService
	AIService        *service.AIService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTwoFactor()
	r.registerAI()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	authHandler := &AuthHandler{AuthService: r.AuthService}
	profileHandler := &ProfileHandler{AuthService: r.AuthService}

	// Public endpoints take authentication attempts, so they all sit behind
	// the strict per-IP limit.
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(authHandler.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(authHandler.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/login-2fa",
		httpx.Chain(http.HandlerFunc(authHandler.HandleTwoFactorLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /auth/profile",
		httpx.Chain(http.HandlerFunc(profileHandler.HandleProfile),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(http.HandlerFunc(profileHandler.HandleLogout),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerTwoFactor() {
	handler := &TwoFactorHandler{TwoFactorService: r.TwoFactorService}

	r.Mux.Handle("GET /auth/2fa/setup",
		httpx.Chain(http.HandlerFunc(handler.HandleSetup),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Code-guessing surface, so strict.
	r.Mux.Handle("POST /auth/2fa/enable",
		httpx.Chain(http.HandlerFunc(handler.HandleEnable),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAI() {
	handler := &AIHandler{AIService: r.AIService}

	r.Mux.Handle("POST /ai/chat",
		httpx.Chain(http.HandlerFunc(handler.HandleChat),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /ai/diagnose",
		httpx.Chain(http.HandlerFunc(handler.HandleDiagnose),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /ai/history",
		httpx.Chain(http.HandlerFunc(handler.HandleHistory),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("DELETE /ai/history",
		httpx.Chain(http.HandlerFunc(handler.HandleClearHistory),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
