package http

import (
	"log/slog"
	"net/http"

	"github.com/taitfuller/feedr-backend/internal/service"
	"github.com/taitfuller/feedr-backend/pkg/httputil"
	"github.com/taitfuller/feedr-backend/pkg/middleware"
)

// UserHandler handles HTTP requests for the authenticated user.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// GetUser handles GET /api/user
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, user)
}

// CreateIssue handles POST /api/github/issue. The response carries GitHub's
// status code and no body.
func (h *UserHandler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	var req service.CreateIssueInput
	if !decodeBody(w, r, &req) {
		return
	}

	status, err := h.users.CreateIssue(r.Context(), middleware.UserIDFromContext(r.Context()), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(status)
}
