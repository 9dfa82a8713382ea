package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taitfuller/feedr-backend/internal/domain"
	"github.com/taitfuller/feedr-backend/internal/repository"
)

// AggregationService computes review statistics over a window. Each summary
// issues its sub-queries concurrently and fails fast: the first error cancels
// the remaining queries and is returned, and partial results are discarded.
type AggregationService struct {
	reviews repository.ReviewRepository
	logger  *slog.Logger
}

// NewAggregationService creates a new aggregation service.
func NewAggregationService(reviews repository.ReviewRepository, logger *slog.Logger) *AggregationService {
	return &AggregationService{
		reviews: reviews,
		logger:  logger,
	}
}

// GetReviewSummary returns the feed-level summary for q. Platforms are not
// applied to the feed summary.
func (s *AggregationService) GetReviewSummary(ctx context.Context, q SummaryQuery) (summary *domain.ReviewSummary, err error) {
	start := time.Now()
	defer func() {
		aggregationDuration.WithLabelValues("review_summary", outcome(err)).Observe(time.Since(start).Seconds())
	}()

	from, to := q.Window.From, q.Window.To
	inWindow := repository.ReviewFilter{FeedID: q.FeedID, From: &from, To: &to}
	beforeWindow := repository.ReviewFilter{FeedID: q.FeedID, Before: &from}

	var (
		byType   map[string]int64
		old      int64
		topicIDs []string
		avg      float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		byType, err = s.reviews.CountBy(gctx, repository.GroupByType, inWindow)
		return err
	})
	g.Go(func() (err error) {
		old, err = s.reviews.Count(gctx, beforeWindow)
		return err
	})
	g.Go(func() (err error) {
		topicIDs, err = s.reviews.DistinctTopicIDs(gctx, inWindow)
		return err
	})
	g.Go(func() (err error) {
		avg, err = s.reviews.AverageRating(gctx, inWindow)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("review summary: %w", err)
	}

	summary = &domain.ReviewSummary{
		OldReviews:    old,
		Topics:        int64(len(topicIDs)),
		AverageRating: avg,
	}
	for t, n := range byType {
		summary.AddTypeCount(domain.ReviewType(t), n)
	}
	return summary, nil
}

// GetSummaryByTopic returns per-topic statistics for q keyed by topic id.
// The key set is the union of topics with reviews in the window, before it,
// or rated in it; topics with no matching reviews are absent.
func (s *AggregationService) GetSummaryByTopic(ctx context.Context, q SummaryQuery) (summaries map[string]domain.TopicSummary, err error) {
	start := time.Now()
	defer func() {
		aggregationDuration.WithLabelValues("topic_summary", outcome(err)).Observe(time.Since(start).Seconds())
	}()

	from, to := q.Window.From, q.Window.To
	inWindow := repository.ReviewFilter{FeedID: q.FeedID, From: &from, To: &to, Platforms: q.Platforms}
	beforeWindow := repository.ReviewFilter{FeedID: q.FeedID, Before: &from, Platforms: q.Platforms}

	var (
		newCounts map[string]int64
		oldCounts map[string]int64
		averages  map[string]float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		newCounts, err = s.reviews.CountBy(gctx, repository.GroupByTopic, inWindow)
		return err
	})
	g.Go(func() (err error) {
		oldCounts, err = s.reviews.CountBy(gctx, repository.GroupByTopic, beforeWindow)
		return err
	})
	g.Go(func() (err error) {
		averages, err = s.reviews.AverageRatingBy(gctx, repository.GroupByTopic, inWindow)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("topic summary: %w", err)
	}

	summaries = make(map[string]domain.TopicSummary, len(newCounts)+len(oldCounts))
	for id, n := range newCounts {
		ts := summaries[id]
		ts.NewReviews = n
		summaries[id] = ts
	}
	for id, n := range oldCounts {
		ts := summaries[id]
		ts.OldReviews = n
		summaries[id] = ts
	}
	for id, avg := range averages {
		ts := summaries[id]
		ts.AverageRating = avg
		summaries[id] = ts
	}
	return summaries, nil
}
