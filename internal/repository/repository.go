package repository

import (
	"context"
	"time"

	"github.com/taitfuller/feedr-backend/internal/domain"
)

// ReviewFilter selects reviews. Zero-valued fields do not constrain.
type ReviewFilter struct {
	// FeedID scopes to one feed; empty selects every review.
	FeedID string
	// From and To bound the review date inclusively.
	From *time.Time
	To   *time.Time
	// Before selects reviews dated strictly before the given time.
	Before *time.Time
	// Platforms restricts to the listed platforms; empty allows all.
	Platforms []domain.Platform
	TopicID   string
	// Limit caps Find results; 0 means no cap.
	Limit int
}

// GroupField is a review column that reviews can be grouped by.
type GroupField string

const (
	GroupByType  GroupField = "type"
	GroupByTopic GroupField = "topic_id"
)

// ReviewRepository is the query interface over stored reviews.
type ReviewRepository interface {
	// Find returns matching reviews, most recent first.
	Find(ctx context.Context, filter ReviewFilter) ([]domain.Review, error)

	// Count returns the number of matching reviews.
	Count(ctx context.Context, filter ReviewFilter) (int64, error)

	// DistinctTopicIDs returns the ids of topics referenced by matching reviews.
	DistinctTopicIDs(ctx context.Context, filter ReviewFilter) ([]string, error)

	// CountBy counts matching reviews per value of field. Reviews whose field
	// is null are not counted.
	CountBy(ctx context.Context, field GroupField, filter ReviewFilter) (map[string]int64, error)

	// AverageRating returns the mean rating of matching reviews, or 0 when
	// none of them is rated.
	AverageRating(ctx context.Context, filter ReviewFilter) (float64, error)

	// AverageRatingBy returns the mean rating per value of field.
	AverageRatingBy(ctx context.Context, field GroupField, filter ReviewFilter) (map[string]float64, error)

	// GetByID retrieves a review by id.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// SetFlag sets the flag of one review and returns the updated review.
	SetFlag(ctx context.Context, id string, flag bool) (*domain.Review, error)

	// UnsetTopic detaches one review from its topic and returns the updated
	// review. Detaching an unattached review succeeds.
	UnsetTopic(ctx context.Context, id string) (*domain.Review, error)
}

// ReviewSlice selects the reviews attached to each topic by FindByIDs.
type ReviewSlice struct {
	From      time.Time
	To        time.Time
	Platforms []domain.Platform
	// Limit caps the reviews per topic.
	Limit int
}

// TopicRepository is the query interface over stored topics.
type TopicRepository interface {
	// FindByIDs returns the topics with the given ids in storage order. When
	// slice is non-nil each topic carries its matching reviews, most recent
	// first; otherwise Reviews is empty.
	FindByIDs(ctx context.Context, ids []string, slice *ReviewSlice) ([]domain.Topic, error)

	// GetByID retrieves a topic without its reviews.
	GetByID(ctx context.Context, id string) (*domain.Topic, error)
}

// FeedRepository manages feeds and the template applications they are
// created from.
type FeedRepository interface {
	// ListAppNames returns the names of all template applications.
	ListAppNames(ctx context.Context) ([]string, error)

	// GetApp retrieves a template application by name.
	GetApp(ctx context.Context, name string) (*domain.AppTemplate, error)

	// CreateFromTemplate creates a feed owned by userID and copies the
	// template's topics and reviews into it atomically.
	CreateFromTemplate(ctx context.Context, feed *domain.Feed, tpl *domain.AppTemplate, userID string) error
}

// UserRepository reads operator accounts.
type UserRepository interface {
	// GetByID retrieves a user with the ids of their feeds.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetAccessToken returns the user's stored GitHub token, or "" when the
	// user has none.
	GetAccessToken(ctx context.Context, id string) (string, error)
}
