package routes

import (
	"net/http"

	"github.com/clipship/backend/internal/app"
	"github.com/clipship/backend/internal/handler"
	"github.com/clipship/backend/internal/metrics"
	"github.com/clipship/backend/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	video := handler.NewVideoHandler(app.VideoService)
	auth := handler.NewAuthHandler(app.SessionService)
	billing := handler.NewBillingHandler(app.ProfileRepository, app.Cfg.BillingWebhookSecret)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// Operational endpoints
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.Handle("GET /metrics", metrics.Handler(app.MetricsRegistry))

	// Videos. Get is public: visibility is decided per record by the
	// service (owner or sharing enabled).
	rateLimiter := middleware.RateLimitUploads(app.Cfg.UploadRatePerMinute)

	mux.HandleFunc("GET /api/videos", middleware.RequireAuth(video.List))
	mux.HandleFunc("GET /api/videos/{id}", video.Get)
	mux.HandleFunc("POST /api/videos", rateLimiter(middleware.RequireAuth(video.RequestUpload)))
	mux.HandleFunc("PATCH /api/videos/{id}/sharing", middleware.RequireAuth(video.SetSharing))
	mux.HandleFunc("PATCH /api/videos/{id}/retention", middleware.RequireAuth(video.SetRetention))
	mux.HandleFunc("PATCH /api/videos/{id}/share-expiry", middleware.RequireAuth(video.SetShareExpiry))
	mux.HandleFunc("PATCH /api/videos/{id}/title", middleware.RequireAuth(video.Rename))
	mux.HandleFunc("DELETE /api/videos/{id}", middleware.RequireAuth(video.Delete))

	// Session
	mux.HandleFunc("POST /auth/signout", auth.SignOut)

	// Billing status feed
	mux.HandleFunc("POST /webhooks/billing", billing.Webhook)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging(app.Metrics),
		middleware.AuthMiddleware(app.SessionService),
	)
}
