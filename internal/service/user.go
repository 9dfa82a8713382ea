package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taitfuller/feedr-backend/internal/domain"
	"github.com/taitfuller/feedr-backend/internal/repository"
	apperrors "github.com/taitfuller/feedr-backend/pkg/errors"
	"github.com/taitfuller/feedr-backend/pkg/validator"
)

// CreateIssueInput holds the parameters for creating a GitHub issue.
type CreateIssueInput struct {
	Owner string `json:"owner" validate:"required"`
	Repo  string `json:"repo" validate:"required"`
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

// UserService reads operator accounts and acts on their behalf.
type UserService struct {
	users  repository.UserRepository
	issues IssueCreator
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, issues IssueCreator, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		issues: issues,
		logger: logger,
	}
}

// GetUser returns the user with the ids of their feeds.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// CreateIssue opens a GitHub issue with userID's stored token and returns
// GitHub's status code. A user without a token is Unauthorized.
func (s *UserService) CreateIssue(ctx context.Context, userID string, input *CreateIssueInput) (int, error) {
	if err := validator.Validate(input); err != nil {
		return 0, err
	}

	token, err := s.users.GetAccessToken(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get access token: %w", err)
	}
	if token == "" {
		return 0, apperrors.Unauthorized("no GitHub access token for user")
	}

	status, err := s.issues.CreateIssue(ctx, token, domain.Issue{
		Owner: input.Owner,
		Repo:  input.Repo,
		Title: input.Title,
		Body:  input.Body,
	})
	if err != nil {
		return 0, fmt.Errorf("create issue: %w", err)
	}

	s.logger.InfoContext(ctx, "github issue requested",
		slog.String("user_id", userID),
		slog.String("owner", input.Owner),
		slog.String("repo", input.Repo),
		slog.Int("status", status),
	)
	return status, nil
}
