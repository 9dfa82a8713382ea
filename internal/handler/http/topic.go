package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taitfuller/feedr-backend/internal/service"
	"github.com/taitfuller/feedr-backend/pkg/httputil"
)

// TopicHandler handles HTTP requests for topic endpoints.
type TopicHandler struct {
	topics *service.TopicService
	logger *slog.Logger
}

// NewTopicHandler creates a new topic HTTP handler.
func NewTopicHandler(topics *service.TopicService, logger *slog.Logger) *TopicHandler {
	return &TopicHandler{
		topics: topics,
		logger: logger,
	}
}

// ListTopics handles GET /api/topic?feed=&from=&to=&platforms=
// feed is optional; without it every review is in scope.
func (h *TopicHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	q, ok := parseSummaryQuery(w, r, false)
	if !ok {
		return
	}

	topics, err := h.topics.ListTopics(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, topics)
}

// GetTopic handles GET /api/topic/{id}
func (h *TopicHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	topic, err := h.topics.GetTopic(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, topic)
}
