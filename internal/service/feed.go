package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taitfuller/feedr-backend/internal/domain"
	"github.com/taitfuller/feedr-backend/internal/repository"
	"github.com/taitfuller/feedr-backend/pkg/validator"
)

// CreateFeedInput holds the parameters for creating a feed from a template app.
type CreateFeedInput struct {
	AppName  string `json:"appName" validate:"required,max=100"`
	RepoName string `json:"repoName" validate:"required,max=200"`
}

// FeedService manages feeds and the template apps they are created from.
type FeedService struct {
	feeds  repository.FeedRepository
	cache  AppCache
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewFeedService creates a new feed service. cache may be nil.
func NewFeedService(feeds repository.FeedRepository, cache AppCache, events EventPublisher, logger *slog.Logger) *FeedService {
	return &FeedService{
		feeds:  feeds,
		cache:  cache,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// ListApps returns the template app names, from the cache when possible.
// Cache failures fall back to the database.
func (s *FeedService) ListApps(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		names, ok, err := s.cache.Names(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "app cache read failed", slog.String("error", err.Error()))
		} else if ok {
			return names, nil
		}
	}

	names, err := s.feeds.ListAppNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetNames(ctx, names); err != nil {
			s.logger.WarnContext(ctx, "app cache write failed", slog.String("error", err.Error()))
		}
	}
	return names, nil
}

// CreateFeed copies the template app input.AppName into a new feed owned by
// userID.
func (s *FeedService) CreateFeed(ctx context.Context, input *CreateFeedInput, userID string) (*domain.Feed, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	tpl, err := s.feeds.GetApp(ctx, input.AppName)
	if err != nil {
		return nil, fmt.Errorf("get template app: %w", err)
	}

	feed := &domain.Feed{
		ID:        uuid.New().String(),
		AppName:   input.AppName,
		RepoName:  input.RepoName,
		CreatedAt: s.now().UTC(),
	}
	if err := s.feeds.CreateFromTemplate(ctx, feed, tpl, userID); err != nil {
		return nil, fmt.Errorf("create feed: %w", err)
	}

	reviews := tpl.ReviewCount()
	s.logger.InfoContext(ctx, "feed created",
		slog.String("feed_id", feed.ID),
		slog.String("app_name", feed.AppName),
		slog.String("repo_name", feed.RepoName),
		slog.Int("topics", len(tpl.Topics)),
		slog.Int("reviews", reviews),
	)

	if err := s.events.PublishFeedCreated(ctx, feed, reviews); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish feed.created event",
			slog.String("feed_id", feed.ID),
			slog.String("error", err.Error()),
		)
	}
	return feed, nil
}
