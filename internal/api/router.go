package api

import (
	"net/http"
	"time"

	"hackr_api/internal/api/handler"
	"hackr_api/internal/api/middleware"
	"hackr_api/internal/app/service"
	"hackr_api/internal/common"
	"hackr_api/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const banner = "Welcome to HackR API"

// Deps is everything the router needs to build its handlers.
type Deps struct {
	Tokens            *security.TokenService
	Users             middleware.UserFinder
	Audit             *middleware.AuditLogger
	AuthService       *service.AuthService
	LogService        *service.LogService
	FeatureService    *service.FeatureService
	SimulationService *service.SimulationService
	MailService       *service.MailService

	SecureCookie  bool
	AuthRateLimit float64
	AuthRateBurst int
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middleware.Metrics)
	// The audit logger wraps everything below so it sees the final status,
	// including rejections from the auth chain.
	r.Use(d.Audit.Middleware)
	// Decodes the auth-token cookie into the context; never rejects on its own.
	r.Use(d.Tokens.Verifier())

	authenticate := middleware.Authenticator(d.Users)
	guest := middleware.RejectAuthenticated(d.Users)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithText(w, http.StatusOK, banner)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithText(w, http.StatusOK, "OK")
	})
	r.Handle("/metrics", promhttp.Handler())

	authHandler := handler.NewAuthHandler(d.AuthService, d.Tokens.TTL(), d.SecureCookie)
	r.Route("/auth", func(auth chi.Router) {
		auth.Use(middleware.RateLimit(d.AuthRateLimit, d.AuthRateBurst))
		authHandler.RegisterRoutes(auth, guest, authenticate)
	})

	// Public features: any authenticated user
	featureHandler := handler.NewFeatureHandler(d.FeatureService)
	simulationHandler := handler.NewSimulationHandler(d.SimulationService)
	r.Route("/public", func(pub chi.Router) {
		pub.Use(authenticate)
		pub.Route("/features", func(features chi.Router) {
			featureHandler.RegisterRoutes(features)
			features.Route("/ddos-simulation", simulationHandler.RegisterRoutes)
		})
	})

	// Private routes: admins only
	privateHandler := handler.NewPrivateHandler(d.MailService)
	logHandler := handler.NewLogHandler(d.LogService)
	r.Route("/private", func(priv chi.Router) {
		priv.Use(authenticate)
		priv.Use(middleware.AdminOnly)
		privateHandler.RegisterRoutes(priv)
		priv.Route("/logs", logHandler.RegisterRoutes)
	})

	return r
}
