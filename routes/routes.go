package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/infocampus/campus/app"
	"github.com/infocampus/campus/middleware"
	"github.com/infocampus/campus/utils"
)

// SetupRoutes configures all chat function routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "no-referrer",
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      deps.Config.IsDevelopment(),
	}).Handler)

	// Preflights pass through so the chat handler answers "ok"; CORSHeaders
	// then overwrites the echoed values with the fixed ones.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{middleware.AllowOrigin},
		AllowedMethods:     []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		OptionsPassthrough: true,
		MaxAge:             300,
	}))
	r.Use(middleware.CORSHeaders)
	r.Use(chimw.Timeout(60 * time.Second))

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	limiter := httprate.Limit(deps.Config.Server.RateLimit, rateWindow(deps),
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			_ = utils.WriteTooManyRequests(w, "Demasiadas solicitudes, espera un momento.")
		}),
	)

	r.Route("/chat", func(r chi.Router) {
		r.Options("/", deps.ChatHandler.HandlePreflight)
		r.Group(func(r chi.Router) {
			r.Use(limiter)
			r.Use(deps.AuthMiddleware.ExtractCredential)
			r.Post("/", deps.ChatHandler.HandleChat)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteMethodNotAllowed(w)
	})

	return r
}

func rateWindow(deps *app.Dependencies) time.Duration {
	if deps.Config.Server.RateWindow <= 0 {
		return time.Minute
	}
	return deps.Config.Server.RateWindow
}
