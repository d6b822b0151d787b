package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/brnno-tech/brnno-api/internal/application/billing"
	"github.com/brnno-tech/brnno-api/internal/application/feed"
	"github.com/brnno-tech/brnno-api/internal/application/notify"
	"github.com/brnno-tech/brnno-api/internal/application/push"
	"github.com/brnno-tech/brnno-api/internal/config"
	"github.com/brnno-tech/brnno-api/internal/transport/http/handler"
	appmiddleware "github.com/brnno-tech/brnno-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to the billing endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	pushBridge := push.NewBridge(deps.UserRepo, deps.PushSender)
	notifySvc := notify.NewService(deps.NotificationRepo, pushBridge)
	feedManager := feed.NewManager(deps.NotificationRepo, cfg.FeedPollInterval, cfg.FeedLimit)
	estimator := billing.NewEstimator(deps.TaxClient, cfg.TaxFlatRate)
	intentBuilder := billing.NewIntentBuilder(deps.PaymentGateway)

	healthH := handler.NewHealthHandler()
	taxH := handler.NewTaxHandler(estimator)
	paymentH := handler.NewPaymentHandler(intentBuilder)
	notifH := handler.NewNotificationHandler(notifySvc)
	streamH := handler.NewStreamHandler(feedManager)
	pushH := handler.NewPushHandler(pushBridge)
	deviceH := handler.NewDeviceHandler(pushBridge)
	bookingH := handler.NewBookingEventHandler(notifySvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		// Checkout calls this before the customer is necessarily signed in;
		// the response is always a valid breakdown, so it stays public.
		r.With(sensitiveRL.Limit).Post("/tax/estimate", taxH.Estimate)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.With(sensitiveRL.Limit).Post("/payments/intent", paymentH.CreateIntent)

			r.Get("/notifications", notifH.List)
			r.Get("/notifications/unread-count", notifH.UnreadCount)
			r.Get("/notifications/stream", streamH.Stream)
			r.Put("/notifications/read-all", notifH.MarkAllRead)
			r.Put("/notifications/{id}/read", notifH.MarkRead)

			r.Put("/devices/token", deviceH.RegisterToken)
			r.Post("/push/send", pushH.Send)

			r.Post("/bookings/events", bookingH.Dispatch)
		})
	})

	return r
}
