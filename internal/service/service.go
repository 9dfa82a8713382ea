// Package service holds the feedr business logic. Services depend on the
// repository interfaces and on the narrow collaborator interfaces below.
package service

import (
	"context"

	"github.com/taitfuller/feedr-backend/internal/domain"
)

// EventPublisher publishes domain events. Publication is best effort:
// services log failures and never fail a committed mutation because of them.
type EventPublisher interface {
	PublishReviewFlagged(ctx context.Context, review *domain.Review) error
	PublishReviewTopicRemoved(ctx context.Context, review *domain.Review, previousTopicID string) error
	PublishFeedCreated(ctx context.Context, feed *domain.Feed, reviews int) error
}

// AppCache caches template app names.
type AppCache interface {
	Names(ctx context.Context) ([]string, bool, error)
	SetNames(ctx context.Context, names []string) error
}

// IssueCreator creates issues in a GitHub repository and reports the
// upstream status code.
type IssueCreator interface {
	CreateIssue(ctx context.Context, token string, issue domain.Issue) (int, error)
}

// SummaryQuery scopes an aggregation to a feed, an inclusive window and an
// optional platform subset.
type SummaryQuery struct {
	// FeedID is empty for the unscoped legacy feed.
	FeedID string
	Window domain.Window
	// Platforms is empty to include every platform.
	Platforms []domain.Platform
}
