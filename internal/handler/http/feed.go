package http

import (
	"log/slog"
	"net/http"

	"github.com/taitfuller/feedr-backend/internal/service"
	"github.com/taitfuller/feedr-backend/pkg/httputil"
	"github.com/taitfuller/feedr-backend/pkg/middleware"
)

// FeedHandler handles HTTP requests for feed endpoints.
type FeedHandler struct {
	feeds  *service.FeedService
	logger *slog.Logger
}

// NewFeedHandler creates a new feed HTTP handler.
func NewFeedHandler(feeds *service.FeedService, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{
		feeds:  feeds,
		logger: logger,
	}
}

// ListApps handles GET /api/feed/apps
func (h *FeedHandler) ListApps(w http.ResponseWriter, r *http.Request) {
	names, err := h.feeds.ListApps(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, names)
}

// CreateFeed handles POST /api/feed
func (h *FeedHandler) CreateFeed(w http.ResponseWriter, r *http.Request) {
	var req service.CreateFeedInput
	if !decodeBody(w, r, &req) {
		return
	}

	feed, err := h.feeds.CreateFeed(r.Context(), &req, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, feed)
}
