package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/taitfuller/feedr-backend/internal/domain"
	"github.com/taitfuller/feedr-backend/internal/repository"
)

// TopicPreviewLimit is the number of reviews attached to each listed topic.
const TopicPreviewLimit = 3

// TopicService assembles topics with their reviews and statistics.
type TopicService struct {
	topics      repository.TopicRepository
	reviews     repository.ReviewRepository
	aggregation *AggregationService
	shape       domain.SummaryShape
	logger      *slog.Logger
}

// NewTopicService creates a new topic service. shape selects how per-topic
// counts are rendered.
func NewTopicService(
	topics repository.TopicRepository,
	reviews repository.ReviewRepository,
	aggregation *AggregationService,
	shape domain.SummaryShape,
	logger *slog.Logger,
) *TopicService {
	return &TopicService{
		topics:      topics,
		reviews:     reviews,
		aggregation: aggregation,
		shape:       shape,
		logger:      logger,
	}
}

// ListTopics returns the topics with at least one review in the window, in
// storage order. Each carries its most recent matching reviews, capped at
// TopicPreviewLimit, and its counts; a topic without counts gets zeroes.
func (s *TopicService) ListTopics(ctx context.Context, q SummaryQuery) ([]domain.TopicWithCounts, error) {
	from, to := q.Window.From, q.Window.To
	ids, err := s.reviews.DistinctTopicIDs(ctx, repository.ReviewFilter{FeedID: q.FeedID, From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("find active topics: %w", err)
	}
	if len(ids) == 0 {
		return []domain.TopicWithCounts{}, nil
	}

	var (
		topics    []domain.Topic
		summaries map[string]domain.TopicSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		topics, err = s.topics.FindByIDs(gctx, ids, &repository.ReviewSlice{
			From:      from,
			To:        to,
			Platforms: q.Platforms,
			Limit:     TopicPreviewLimit,
		})
		return err
	})
	g.Go(func() (err error) {
		summaries, err = s.aggregation.GetSummaryByTopic(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}

	result := make([]domain.TopicWithCounts, 0, len(topics))
	for _, t := range topics {
		result = append(result, domain.TopicWithCounts{
			Topic:  t,
			Counts: summaries[t.ID].Render(s.shape),
		})
	}
	return result, nil
}

// GetTopic returns a topic with all of its reviews, most recent first.
func (s *TopicService) GetTopic(ctx context.Context, id string) (*domain.Topic, error) {
	topic, err := s.topics.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get topic: %w", err)
	}

	reviews, err := s.reviews.Find(ctx, repository.ReviewFilter{TopicID: id})
	if err != nil {
		return nil, fmt.Errorf("get topic reviews: %w", err)
	}
	topic.Reviews = reviews
	return topic, nil
}
