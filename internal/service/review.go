package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taitfuller/feedr-backend/internal/domain"
	"github.com/taitfuller/feedr-backend/internal/repository"
	"github.com/taitfuller/feedr-backend/pkg/validator"
)

// ReviewService applies operator mutations to single reviews.
type ReviewService struct {
	reviews repository.ReviewRepository
	events  EventPublisher
	logger  *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(reviews repository.ReviewRepository, events EventPublisher, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		events:  events,
		logger:  logger,
	}
}

// SetFlag sets the flag of review id. A nil flag sets it to true; an explicit
// false is kept.
func (s *ReviewService) SetFlag(ctx context.Context, id string, flag *bool) (*domain.Review, error) {
	if err := validator.Var("id", id, "required,uuid"); err != nil {
		return nil, err
	}
	value := true
	if flag != nil {
		value = *flag
	}

	review, err := s.reviews.SetFlag(ctx, id, value)
	if err != nil {
		return nil, fmt.Errorf("set review flag: %w", err)
	}

	s.logger.InfoContext(ctx, "review flag updated",
		slog.String("review_id", review.ID),
		slog.Bool("flag", review.Flag),
	)

	if err := s.events.PublishReviewFlagged(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.flagged event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}
	return review, nil
}

// RemoveTopic detaches review id from its topic. The topic and the other
// reviews are untouched; detaching an unattached review succeeds.
func (s *ReviewService) RemoveTopic(ctx context.Context, id string) (*domain.Review, error) {
	if err := validator.Var("id", id, "required,uuid"); err != nil {
		return nil, err
	}

	current, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	review, err := s.reviews.UnsetTopic(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("remove review topic: %w", err)
	}

	s.logger.InfoContext(ctx, "review detached from topic",
		slog.String("review_id", review.ID),
		slog.String("topic_id", current.TopicID),
	)

	if err := s.events.PublishReviewTopicRemoved(ctx, review, current.TopicID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.topic_removed event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}
	return review, nil
}
