package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taitfuller/feedr-backend/internal/service"
	"github.com/taitfuller/feedr-backend/pkg/health"
	"github.com/taitfuller/feedr-backend/pkg/middleware"
)

// ServiceName labels HTTP metrics.
const ServiceName = "feedr-api"

// Services groups the services exposed over HTTP.
type Services struct {
	Aggregation *service.AggregationService
	Reviews     *service.ReviewService
	Topics      *service.TopicService
	Feeds       *service.FeedService
	Users       *service.UserService
}

// RouterConfig holds the HTTP-layer settings.
type RouterConfig struct {
	CORSOrigin     string
	RequestTimeout time.Duration
	// IssueRateLimit throttles GitHub issue creation per user.
	IssueRateLimit middleware.RateLimitConfig
	ValidateToken  middleware.TokenValidator
}

// NewRouter creates a chi router with all feedr routes registered.
func NewRouter(cfg RouterConfig, svc Services, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing())
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigin)))

	// Ops endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	reviewHandler := NewReviewHandler(svc.Aggregation, svc.Reviews, logger)
	topicHandler := NewTopicHandler(svc.Topics, logger)
	feedHandler := NewFeedHandler(svc.Feeds, logger)
	userHandler := NewUserHandler(svc.Users, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Compress(5))
		if cfg.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
		}
		r.Use(middleware.Auth(cfg.ValidateToken))
		r.Use(middleware.RequestLogger(logger))

		r.Route("/review", func(r chi.Router) {
			r.Get("/summary", reviewHandler.GetSummary)
			r.Patch("/{id}/flag", reviewHandler.SetFlag)
			r.Patch("/{id}/remove-topic", reviewHandler.RemoveTopic)
		})

		r.Route("/topic", func(r chi.Router) {
			r.Get("/", topicHandler.ListTopics)
			r.Get("/{id}", topicHandler.GetTopic)
		})

		r.Route("/feed", func(r chi.Router) {
			r.Get("/apps", feedHandler.ListApps)
			r.Post("/", feedHandler.CreateFeed)
		})

		r.Get("/user", userHandler.GetUser)

		r.Route("/github", func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.IssueRateLimit, logger))
			r.Post("/issue", userHandler.CreateIssue)
		})
	})

	return r
}
