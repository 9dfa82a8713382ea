package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taitfuller/feedr-backend/internal/service"
	"github.com/taitfuller/feedr-backend/pkg/httputil"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	aggregation *service.AggregationService
	reviews     *service.ReviewService
	logger      *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(aggregation *service.AggregationService, reviews *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		aggregation: aggregation,
		reviews:     reviews,
		logger:      logger,
	}
}

// SetFlagRequest is the JSON body of PATCH /api/review/{id}/flag. A missing
// flag means true.
type SetFlagRequest struct {
	Flag *bool `json:"flag"`
}

// GetSummary handles GET /api/review/summary?feed=&from=&to=
func (h *ReviewHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q, ok := parseSummaryQuery(w, r, true)
	if !ok {
		return
	}

	summary, err := h.aggregation.GetReviewSummary(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, summary)
}

// SetFlag handles PATCH /api/review/{id}/flag
func (h *ReviewHandler) SetFlag(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req SetFlagRequest
	if !decodeBody(w, r, &req) {
		return
	}

	review, err := h.reviews.SetFlag(r.Context(), id.String(), req.Flag)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, review)
}

// RemoveTopic handles PATCH /api/review/{id}/remove-topic
func (h *ReviewHandler) RemoveTopic(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	review, err := h.reviews.RemoveTopic(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, review)
}
