package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/taitfuller/feedr-backend/internal/domain"
	"github.com/taitfuller/feedr-backend/internal/repository"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func timePtr(t time.Time) *time.Time { return &t }

func boolPtr(b bool) *bool { return &b }

// --- Mock Review Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Find(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Count(ctx context.Context, filter repository.ReviewFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReviewRepository) DistinctTopicIDs(ctx context.Context, filter repository.ReviewFilter) ([]string, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockReviewRepository) CountBy(ctx context.Context, field repository.GroupField, filter repository.ReviewFilter) (map[string]int64, error) {
	args := m.Called(ctx, field, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *mockReviewRepository) AverageRating(ctx context.Context, filter repository.ReviewFilter) (float64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockReviewRepository) AverageRatingBy(ctx context.Context, field repository.GroupField, filter repository.ReviewFilter) (map[string]float64, error) {
	args := m.Called(ctx, field, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) SetFlag(ctx context.Context, id string, flag bool) (*domain.Review, error) {
	args := m.Called(ctx, id, flag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) UnsetTopic(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

// --- Mock Topic Repository ---

type mockTopicRepository struct {
	mock.Mock
}

func (m *mockTopicRepository) FindByIDs(ctx context.Context, ids []string, slice *repository.ReviewSlice) ([]domain.Topic, error) {
	args := m.Called(ctx, ids, slice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Topic), args.Error(1)
}

func (m *mockTopicRepository) GetByID(ctx context.Context, id string) (*domain.Topic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Topic), args.Error(1)
}

// --- Mock Feed Repository ---

type mockFeedRepository struct {
	mock.Mock
}

func (m *mockFeedRepository) ListAppNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockFeedRepository) GetApp(ctx context.Context, name string) (*domain.AppTemplate, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AppTemplate), args.Error(1)
}

func (m *mockFeedRepository) CreateFromTemplate(ctx context.Context, feed *domain.Feed, tpl *domain.AppTemplate, userID string) error {
	args := m.Called(ctx, feed, tpl, userID)
	return args.Error(0)
}

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetAccessToken(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// --- Mock collaborators ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishReviewFlagged(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockPublisher) PublishReviewTopicRemoved(ctx context.Context, review *domain.Review, previousTopicID string) error {
	return m.Called(ctx, review, previousTopicID).Error(0)
}

func (m *mockPublisher) PublishFeedCreated(ctx context.Context, feed *domain.Feed, reviews int) error {
	return m.Called(ctx, feed, reviews).Error(0)
}

type mockAppCache struct {
	mock.Mock
}

func (m *mockAppCache) Names(ctx context.Context) ([]string, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]string), args.Bool(1), args.Error(2)
}

func (m *mockAppCache) SetNames(ctx context.Context, names []string) error {
	return m.Called(ctx, names).Error(0)
}

type mockIssueCreator struct {
	mock.Mock
}

func (m *mockIssueCreator) CreateIssue(ctx context.Context, token string, issue domain.Issue) (int, error) {
	args := m.Called(ctx, token, issue)
	return args.Int(0), args.Error(1)
}
