package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taitfuller/feedr-backend/internal/domain"
	"github.com/taitfuller/feedr-backend/internal/repository"
	"github.com/taitfuller/feedr-backend/pkg/database"
	apperrors "github.com/taitfuller/feedr-backend/pkg/errors"
)

const reviewColumns = `id, feed_id::text, date, platform, type, rating, text, flag, topic_id::text`

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Find returns matching reviews, most recent first.
func (r *ReviewRepository) Find(ctx context.Context, filter repository.ReviewFilter) (reviews []domain.Review, err error) {
	where := reviewWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM reviews%s ORDER BY date DESC, id`, reviewColumns, where.clause())
	if filter.Limit > 0 {
		query += " LIMIT " + where.next(filter.Limit)
	}

	ctx, end := database.TraceQuery(ctx, "reviews.find", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	defer rows.Close()

	reviews = []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

// Count returns the number of matching reviews.
func (r *ReviewRepository) Count(ctx context.Context, filter repository.ReviewFilter) (n int64, err error) {
	where := reviewWhere(filter)
	query := `SELECT COUNT(*) FROM reviews` + where.clause()

	ctx, end := database.TraceQuery(ctx, "reviews.count", query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, where.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}

// DistinctTopicIDs returns the ids of topics referenced by matching reviews.
func (r *ReviewRepository) DistinctTopicIDs(ctx context.Context, filter repository.ReviewFilter) (ids []string, err error) {
	where := reviewWhere(filter)
	where.addRaw("topic_id IS NOT NULL")
	query := `SELECT DISTINCT topic_id::text FROM reviews` + where.clause() + ` ORDER BY 1`

	ctx, end := database.TraceQuery(ctx, "reviews.distinct_topics", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("distinct topic ids: %w", err)
	}
	defer rows.Close()

	ids = []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan topic id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic ids: %w", err)
	}
	return ids, nil
}

// CountBy counts matching reviews per value of field. Legacy type names are
// folded into their current equivalents.
func (r *ReviewRepository) CountBy(ctx context.Context, field repository.GroupField, filter repository.ReviewFilter) (counts map[string]int64, err error) {
	col, err := groupColumn(field)
	if err != nil {
		return nil, err
	}
	where := reviewWhere(filter)
	where.addRaw(string(field) + " IS NOT NULL")
	query := fmt.Sprintf(`SELECT %s, COUNT(*) FROM reviews%s GROUP BY 1`, col, where.clause())

	ctx, end := database.TraceQuery(ctx, "reviews.count_by_"+string(field), query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("count reviews by %s: %w", field, err)
	}
	defer rows.Close()

	counts = make(map[string]int64)
	for rows.Next() {
		var (
			key string
			n   int64
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan %s count: %w", field, err)
		}
		if field == repository.GroupByType {
			key = string(domain.NormalizeReviewType(key))
		}
		counts[key] += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s counts: %w", field, err)
	}
	return counts, nil
}

// AverageRating returns the mean rating of matching reviews, or 0 when none
// of them is rated.
func (r *ReviewRepository) AverageRating(ctx context.Context, filter repository.ReviewFilter) (avg float64, err error) {
	where := reviewWhere(filter)
	query := `SELECT COALESCE(AVG(rating), 0)::float8 FROM reviews` + where.clause()

	ctx, end := database.TraceQuery(ctx, "reviews.average_rating", query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, where.args...).Scan(&avg); err != nil {
		return 0, fmt.Errorf("average rating: %w", err)
	}
	return avg, nil
}

// AverageRatingBy returns the mean rating per value of field. Groups without
// any rated review average 0.
func (r *ReviewRepository) AverageRatingBy(ctx context.Context, field repository.GroupField, filter repository.ReviewFilter) (avgs map[string]float64, err error) {
	col, err := groupColumn(field)
	if err != nil {
		return nil, err
	}
	where := reviewWhere(filter)
	where.addRaw(string(field) + " IS NOT NULL")
	query := fmt.Sprintf(`SELECT %s, COALESCE(AVG(rating), 0)::float8 FROM reviews%s GROUP BY 1`, col, where.clause())

	ctx, end := database.TraceQuery(ctx, "reviews.average_rating_by_"+string(field), query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("average rating by %s: %w", field, err)
	}
	defer rows.Close()

	avgs = make(map[string]float64)
	for rows.Next() {
		var (
			key string
			avg float64
		)
		if err := rows.Scan(&key, &avg); err != nil {
			return nil, fmt.Errorf("scan %s average: %w", field, err)
		}
		avgs[key] = avg
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s averages: %w", field, err)
	}
	return avgs, nil
}

// GetByID retrieves a review by id.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (rv *domain.Review, err error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "reviews.get", query)
	defer func() { end(err) }()

	rv, err = scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, reviewError("get review", id, err)
	}
	return rv, nil
}

// SetFlag sets the flag of one review.
func (r *ReviewRepository) SetFlag(ctx context.Context, id string, flag bool) (rv *domain.Review, err error) {
	query := `UPDATE reviews SET flag = $2 WHERE id = $1 RETURNING ` + reviewColumns

	ctx, end := database.TraceQuery(ctx, "reviews.set_flag", query)
	defer func() { end(err) }()

	rv, err = scanReview(r.pool.QueryRow(ctx, query, id, flag))
	if err != nil {
		return nil, reviewError("set review flag", id, err)
	}
	return rv, nil
}

// UnsetTopic clears the topic reference of one review. The topic and its
// other reviews are untouched.
func (r *ReviewRepository) UnsetTopic(ctx context.Context, id string) (rv *domain.Review, err error) {
	query := `UPDATE reviews SET topic_id = NULL WHERE id = $1 RETURNING ` + reviewColumns

	ctx, end := database.TraceQuery(ctx, "reviews.unset_topic", query)
	defer func() { end(err) }()

	rv, err = scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, reviewError("unset review topic", id, err)
	}
	return rv, nil
}

func reviewError(op, id string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NotFound("review", id)
	case database.IsValidationViolation(err):
		return apperrors.Validation("review failed validation", err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var (
		rv       domain.Review
		feedID   *string
		date     time.Time
		platform string
		typ      string
		rating   *int
		topicID  *string
	)
	if err := row.Scan(&rv.ID, &feedID, &date, &platform, &typ, &rating, &rv.Text, &rv.Flag, &topicID); err != nil {
		return nil, err
	}
	rv.Date = date.UTC()
	rv.Platform = domain.Platform(platform)
	rv.Type = domain.NormalizeReviewType(typ)
	rv.Rating = rating
	if feedID != nil {
		rv.FeedID = *feedID
	}
	if topicID != nil {
		rv.TopicID = *topicID
	}
	return &rv, nil
}
