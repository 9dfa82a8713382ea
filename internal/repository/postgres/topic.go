package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taitfuller/feedr-backend/internal/domain"
	"github.com/taitfuller/feedr-backend/internal/repository"
	"github.com/taitfuller/feedr-backend/pkg/database"
	apperrors "github.com/taitfuller/feedr-backend/pkg/errors"
)

const topicColumns = `id, feed_id::text, keywords, summary, type`

// TopicRepository implements repository.TopicRepository using PostgreSQL.
type TopicRepository struct {
	pool database.DBTX
}

// NewTopicRepository creates a new PostgreSQL-backed topic repository.
func NewTopicRepository(pool database.DBTX) *TopicRepository {
	return &TopicRepository{pool: pool}
}

// FindByIDs returns the topics with the given ids in insertion order. With a
// slice, each topic carries at most slice.Limit reviews dated within the
// slice window and posted on one of its platforms, most recent first.
func (r *TopicRepository) FindByIDs(ctx context.Context, ids []string, slice *repository.ReviewSlice) ([]domain.Topic, error) {
	if len(ids) == 0 {
		return []domain.Topic{}, nil
	}

	topics, err := r.findTopics(ctx, ids)
	if err != nil {
		return nil, err
	}
	if slice == nil || len(topics) == 0 {
		return topics, nil
	}

	byTopic, err := r.reviewSlices(ctx, ids, *slice)
	if err != nil {
		return nil, err
	}
	for i := range topics {
		if rs, ok := byTopic[topics[i].ID]; ok {
			topics[i].Reviews = rs
		}
	}
	return topics, nil
}

func (r *TopicRepository) findTopics(ctx context.Context, ids []string) (topics []domain.Topic, err error) {
	query := `SELECT ` + topicColumns + ` FROM topics WHERE id = ANY($1) ORDER BY created_at, id`

	ctx, end := database.TraceQuery(ctx, "topics.find_by_ids", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("find topics: %w", err)
	}
	defer rows.Close()

	topics = []domain.Topic{}
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topics: %w", err)
	}
	return topics, nil
}

// reviewSlices ranks each topic's matching reviews by date and keeps the
// first slice.Limit of them.
func (r *TopicRepository) reviewSlices(ctx context.Context, ids []string, slice repository.ReviewSlice) (out map[string][]domain.Review, err error) {
	where := &whereBuilder{}
	where.add("topic_id = ANY($%d)", ids)
	where.add("date >= $%d", slice.From)
	where.add("date <= $%d", slice.To)
	if len(slice.Platforms) > 0 {
		where.add("platform = ANY($%d)", platformStrings(slice.Platforms))
	}

	limit := ""
	if slice.Limit > 0 {
		limit = "WHERE rn <= " + where.next(slice.Limit)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY topic_id ORDER BY date DESC, id) AS rn
			FROM reviews%s
		) ranked
		%s
		ORDER BY topic_id, rn`, reviewColumns, where.clause(), limit)

	ctx, end := database.TraceQuery(ctx, "topics.review_slices", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("find topic reviews: %w", err)
	}
	defer rows.Close()

	out = make(map[string][]domain.Review)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan topic review: %w", err)
		}
		out[rv.TopicID] = append(out[rv.TopicID], *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic reviews: %w", err)
	}
	return out, nil
}

// GetByID retrieves a topic without its reviews.
func (r *TopicRepository) GetByID(ctx context.Context, id string) (t *domain.Topic, err error) {
	query := `SELECT ` + topicColumns + ` FROM topics WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "topics.get", query)
	defer func() { end(err) }()

	t, err = scanTopic(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("topic", id)
		}
		return nil, fmt.Errorf("get topic: %w", err)
	}
	return t, nil
}

func scanTopic(row pgx.Row) (*domain.Topic, error) {
	var (
		t      domain.Topic
		feedID *string
		typ    string
	)
	if err := row.Scan(&t.ID, &feedID, &t.Keywords, &t.Summary, &typ); err != nil {
		return nil, err
	}
	if feedID != nil {
		t.FeedID = *feedID
	}
	if t.Keywords == nil {
		t.Keywords = []string{}
	}
	t.Type = domain.NormalizeTopicType(typ)
	t.Reviews = []domain.Review{}
	return &t, nil
}
