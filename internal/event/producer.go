package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taitfuller/feedr-backend/internal/domain"
	pkgkafka "github.com/taitfuller/feedr-backend/pkg/kafka"
	"github.com/taitfuller/feedr-backend/pkg/logger"
)

// Kafka topics. Each topic carries every event type of one subject kind.
const (
	TopicReview = "feedr.review"
	TopicFeed   = "feedr.feed"
)

// Event types.
const (
	TypeReviewFlagged      = "feedr.review.flagged"
	TypeReviewTopicRemoved = "feedr.review.topic_removed"
	TypeFeedCreated        = "feedr.feed.created"
)

const (
	subjectReview = "review"
	subjectFeed   = "feed"
)

// Source identifies events published by the API.
const Source = "feedr-api"

// ReviewFlaggedData is the payload of a feedr.review.flagged event.
type ReviewFlaggedData struct {
	ReviewID string `json:"reviewId"`
	FeedID   string `json:"feedId,omitempty"`
	Flag     bool   `json:"flag"`
}

// ReviewTopicRemovedData is the payload of a feedr.review.topic_removed event.
type ReviewTopicRemovedData struct {
	ReviewID string `json:"reviewId"`
	FeedID   string `json:"feedId,omitempty"`
	// TopicID is the topic the review was detached from; empty when the
	// review was already unattached.
	TopicID string `json:"topicId,omitempty"`
}

// FeedCreatedData is the payload of a feedr.feed.created event.
type FeedCreatedData struct {
	FeedID   string `json:"feedId"`
	AppName  string `json:"appName"`
	RepoName string `json:"repoName"`
	Reviews  int    `json:"reviews"`
}

// Producer publishes feedr domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewFlagged publishes a feedr.review.flagged event.
func (p *Producer) PublishReviewFlagged(ctx context.Context, review *domain.Review) error {
	data := ReviewFlaggedData{
		ReviewID: review.ID,
		FeedID:   review.FeedID,
		Flag:     review.Flag,
	}
	return p.publish(ctx, TopicReview, TypeReviewFlagged, subjectReview, review.ID, data)
}

// PublishReviewTopicRemoved publishes a feedr.review.topic_removed event.
// previousTopicID is the topic the review belonged to before the update.
func (p *Producer) PublishReviewTopicRemoved(ctx context.Context, review *domain.Review, previousTopicID string) error {
	data := ReviewTopicRemovedData{
		ReviewID: review.ID,
		FeedID:   review.FeedID,
		TopicID:  previousTopicID,
	}
	return p.publish(ctx, TopicReview, TypeReviewTopicRemoved, subjectReview, review.ID, data)
}

// PublishFeedCreated publishes a feedr.feed.created event.
func (p *Producer) PublishFeedCreated(ctx context.Context, feed *domain.Feed, reviews int) error {
	data := FeedCreatedData{
		FeedID:   feed.ID,
		AppName:  feed.AppName,
		RepoName: feed.RepoName,
		Reviews:  reviews,
	}
	return p.publish(ctx, TopicFeed, TypeFeedCreated, subjectFeed, feed.ID, data)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, kind, subjectID string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, kind, subjectID, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	evt.WithActor(logger.UserIDFromContext(ctx)).
		WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("type", eventType),
		slog.String("subject_id", subjectID),
	)
	return nil
}
