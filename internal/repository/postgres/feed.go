package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taitfuller/feedr-backend/internal/domain"
	"github.com/taitfuller/feedr-backend/pkg/database"
	apperrors "github.com/taitfuller/feedr-backend/pkg/errors"
)

var reviewCopyColumns = []string{"id", "feed_id", "date", "platform", "type", "rating", "text", "flag", "topic_id"}

// FeedRepository implements repository.FeedRepository using PostgreSQL.
type FeedRepository struct {
	pool  database.DBTX
	newID func() uuid.UUID
}

// NewFeedRepository creates a new PostgreSQL-backed feed repository.
func NewFeedRepository(pool database.DBTX) *FeedRepository {
	return &FeedRepository{pool: pool, newID: uuid.New}
}

// ListAppNames returns the names of all template applications.
func (r *FeedRepository) ListAppNames(ctx context.Context) (names []string, err error) {
	query := `SELECT name FROM apps ORDER BY name`

	ctx, end := database.TraceQuery(ctx, "apps.list", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}
	defer rows.Close()

	names = []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan app name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate apps: %w", err)
	}
	return names, nil
}

// GetApp retrieves a template application by name.
func (r *FeedRepository) GetApp(ctx context.Context, name string) (tpl *domain.AppTemplate, err error) {
	query := `SELECT name, template FROM apps WHERE name = $1`

	ctx, end := database.TraceQuery(ctx, "apps.get", query)
	defer func() { end(err) }()

	var (
		appName string
		raw     []byte
	)
	if err = r.pool.QueryRow(ctx, query, name).Scan(&appName, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("app", name)
		}
		return nil, fmt.Errorf("get app: %w", err)
	}

	tpl = &domain.AppTemplate{}
	if err = json.Unmarshal(raw, tpl); err != nil {
		return nil, fmt.Errorf("decode app template %s: %w", name, err)
	}
	tpl.Name = appName
	return tpl, nil
}

// CreateFromTemplate inserts feed, links it to userID and copies every topic
// and review of tpl into it in one transaction. Template reviews keep their
// topic assignment; OtherReviews are copied without a topic.
func (r *FeedRepository) CreateFromTemplate(ctx context.Context, feed *domain.Feed, tpl *domain.AppTemplate, userID string) (err error) {
	ctx, end := database.TraceQuery(ctx, "feeds.create_from_template", "BEGIN; INSERT feeds, user_feeds, topics; COPY reviews; COMMIT")
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO feeds (id, app_name, repo_name, created_at) VALUES ($1, $2, $3, $4)`,
		feed.ID, feed.AppName, feed.RepoName, feed.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert feed: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO user_feeds (user_id, feed_id, created_at) VALUES ($1, $2, $3)`,
		userID, feed.ID, feed.CreatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("user", userID)
		}
		return fmt.Errorf("link feed to user: %w", err)
	}

	feedUUID, err := uuid.Parse(feed.ID)
	if err != nil {
		return apperrors.InvalidInput("feed id must be a UUID")
	}

	var reviews [][]any
	for i, topic := range tpl.Topics {
		topicID := r.newID()
		// Offsetting created_at keeps template order as storage order.
		createdAt := feed.CreatedAt.Add(time.Duration(i) * time.Microsecond)
		_, err = tx.Exec(ctx,
			`INSERT INTO topics (id, feed_id, keywords, summary, type, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			topicID.String(), feed.ID, topic.Keywords, topic.Summary, string(domain.NormalizeTopicType(topic.Type)), createdAt,
		)
		if err != nil {
			if database.IsValidationViolation(err) {
				return apperrors.Validation("template topic failed validation", err)
			}
			return fmt.Errorf("insert topic: %w", err)
		}
		for _, rv := range topic.Reviews {
			reviews = append(reviews, r.copyRow(feedUUID, rv, &topicID))
		}
	}
	for _, rv := range tpl.OtherReviews {
		reviews = append(reviews, r.copyRow(feedUUID, rv, nil))
	}

	if len(reviews) > 0 {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"reviews"}, reviewCopyColumns, pgx.CopyFromRows(reviews))
		if err != nil {
			if database.IsValidationViolation(err) {
				return apperrors.Validation("template review failed validation", err)
			}
			return fmt.Errorf("copy reviews: %w", err)
		}
		if int(n) != len(reviews) {
			return fmt.Errorf("copy reviews: wrote %d of %d rows", n, len(reviews))
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// copyRow builds a COPY row. Ids are uuid.UUID so they encode in COPY's
// binary format.
func (r *FeedRepository) copyRow(feedID uuid.UUID, rv domain.TemplateReview, topicID *uuid.UUID) []any {
	var rating any
	if rv.Rating != nil {
		rating = int16(*rv.Rating)
	}
	var topic any
	if topicID != nil {
		topic = *topicID
	}
	platform := rv.Platform
	if p, ok := domain.ParsePlatform(platform); ok {
		platform = string(p)
	}
	return []any{
		r.newID(),
		feedID,
		rv.Date,
		platform,
		string(domain.NormalizeReviewType(rv.Type)),
		rating,
		rv.Text,
		false,
		topic,
	}
}
