// Package seed loads demo data for local development: a template app that
// feeds can be created from and a user to own them.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/taitfuller/feedr-backend/internal/domain"
	"github.com/taitfuller/feedr-backend/pkg/database"
)

// Options sizes a generated template.
type Options struct {
	Topics          int
	ReviewsPerTopic int
	OtherReviews    int
	// Days is how far back review dates are spread from Now.
	Days int
	Now  time.Time
}

// DefaultOptions returns a template roughly the size of a small app.
func DefaultOptions(now time.Time) Options {
	return Options{
		Topics:          6,
		ReviewsPerTopic: 12,
		OtherReviews:    20,
		Days:            60,
		Now:             now,
	}
}

type topicDef struct {
	keywords []string
	summary  string
	kind     domain.ReviewType
	texts    []string
}

var topicDefs = []topicDef{
	{
		keywords: []string{"crash", "startup"},
		summary:  "App crashes on launch after the latest update",
		kind:     domain.ReviewTypeBugReport,
		texts: []string{
			"Crashes every time I open it since the update.",
			"Won't start at all on my phone anymore.",
			"Opens for a second then closes.",
		},
	},
	{
		keywords: []string{"login", "password"},
		summary:  "Users cannot log in or reset their password",
		kind:     domain.ReviewTypeBugReport,
		texts: []string{
			"Password reset email never arrives.",
			"Stuck on the login screen with a spinner.",
			"Logs me out every day.",
		},
	},
	{
		keywords: []string{"dark mode", "theme"},
		summary:  "Requests for a dark theme",
		kind:     domain.ReviewTypeFeatureRequest,
		texts: []string{
			"Please add dark mode, it's too bright at night.",
			"Would love a dark theme option.",
		},
	},
	{
		keywords: []string{"sync", "offline"},
		summary:  "Data does not sync between devices",
		kind:     domain.ReviewTypeBugReport,
		texts: []string{
			"My notes don't show up on my tablet.",
			"Offline changes get lost when I reconnect.",
		},
	},
	{
		keywords: []string{"export", "csv"},
		summary:  "Requests to export data",
		kind:     domain.ReviewTypeFeatureRequest,
		texts: []string{
			"Let me export everything to CSV.",
			"An export to spreadsheet would be great.",
		},
	},
	{
		keywords: []string{"widget", "home screen"},
		summary:  "Requests for a home screen widget",
		kind:     domain.ReviewTypeFeatureRequest,
		texts: []string{
			"A home screen widget would save me so much time.",
			"Please add a widget.",
		},
	},
}

var otherTexts = []string{
	"Great app, use it every day.",
	"Does what it says.",
	"Five stars, no complaints.",
	"Decent but the ads are annoying.",
	"Nice design.",
}

// Template generates a template app called name. r drives every random
// choice so a fixed seed yields the same template.
func Template(name string, opts Options, r *rand.Rand) *domain.AppTemplate {
	tpl := &domain.AppTemplate{
		Name:         name,
		Topics:       make([]domain.TemplateTopic, 0, opts.Topics),
		OtherReviews: make([]domain.TemplateReview, 0, opts.OtherReviews),
	}

	for i := 0; i < opts.Topics; i++ {
		def := topicDefs[i%len(topicDefs)]
		topic := domain.TemplateTopic{
			Keywords: def.keywords,
			Summary:  def.summary,
			Type:     string(def.kind),
			Reviews:  make([]domain.TemplateReview, 0, opts.ReviewsPerTopic),
		}
		for j := 0; j < opts.ReviewsPerTopic; j++ {
			text := def.texts[r.IntN(len(def.texts))]
			topic.Reviews = append(topic.Reviews, review(opts, r, def.kind, text))
		}
		tpl.Topics = append(tpl.Topics, topic)
	}

	for i := 0; i < opts.OtherReviews; i++ {
		text := otherTexts[r.IntN(len(otherTexts))]
		tpl.OtherReviews = append(tpl.OtherReviews, review(opts, r, domain.ReviewTypeOther, text))
	}
	return tpl
}

func review(opts Options, r *rand.Rand, kind domain.ReviewType, text string) domain.TemplateReview {
	platforms := domain.AllPlatforms()
	rv := domain.TemplateReview{
		Date:     opts.Now.Add(-time.Duration(r.Int64N(int64(opts.Days) * int64(24*time.Hour)))).UTC().Truncate(time.Second),
		Platform: string(platforms[r.IntN(len(platforms))]),
		Type:     string(kind),
		Text:     text,
	}
	// Roughly one review in five has no star rating.
	if r.IntN(5) != 0 {
		rating := ratingFor(kind, r)
		rv.Rating = &rating
	}
	return rv
}

func ratingFor(kind domain.ReviewType, r *rand.Rand) int {
	switch kind {
	case domain.ReviewTypeBugReport:
		return 1 + r.IntN(2)
	case domain.ReviewTypeFeatureRequest:
		return 3 + r.IntN(2)
	default:
		return 3 + r.IntN(3)
	}
}

// Seeder writes seed data with plain SQL.
type Seeder struct {
	pool database.DBTX
}

// NewSeeder creates a seeder.
func NewSeeder(pool database.DBTX) *Seeder {
	return &Seeder{pool: pool}
}

// UpsertApp stores tpl under its name, replacing an existing template.
func (s *Seeder) UpsertApp(ctx context.Context, tpl *domain.AppTemplate) error {
	raw, err := json.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("encode app template %s: %w", tpl.Name, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO apps (name, template) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET template = EXCLUDED.template`,
		tpl.Name, raw,
	)
	if err != nil {
		return fmt.Errorf("upsert app %s: %w", tpl.Name, err)
	}
	return nil
}

// UpsertUser creates or updates the user with u.GitHubID and returns its id.
// An empty access token leaves a stored token untouched.
func (s *Seeder) UpsertUser(ctx context.Context, u *domain.User) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (github_id, display_name, github_access_token)
		 VALUES ($1, $2, NULLIF($3, ''))
		 ON CONFLICT (github_id) DO UPDATE SET
		   display_name = EXCLUDED.display_name,
		   github_access_token = COALESCE(EXCLUDED.github_access_token, users.github_access_token),
		   updated_at = now()
		 RETURNING id`,
		u.GitHubID, u.DisplayName, u.GitHubAccessToken,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert user %d: %w", u.GitHubID, err)
	}
	return id, nil
}
