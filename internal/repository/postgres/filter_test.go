package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taitfuller/feedr-backend/internal/domain"
	"github.com/taitfuller/feedr-backend/internal/repository"
)

func TestReviewWhere(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		filter     repository.ReviewFilter
		wantClause string
		wantArgs   []any
	}{
		{
			name:       "empty feed is unscoped",
			filter:     repository.ReviewFilter{},
			wantClause: "",
			wantArgs:   nil,
		},
		{
			name:       "empty feed with window",
			filter:     repository.ReviewFilter{From: &from},
			wantClause: " WHERE date >= $1",
			wantArgs:   []any{from},
		},
		{
			name: "feed and platforms",
			filter: repository.ReviewFilter{
				FeedID:    testFeedID,
				Platforms: []domain.Platform{domain.PlatformIOS},
			},
			wantClause: " WHERE feed_id = $1 AND platform = ANY($2)",
			wantArgs:   []any{testFeedID, []string{"iOS"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := reviewWhere(tt.filter)
			assert.Equal(t, tt.wantClause, b.clause())
			assert.Equal(t, tt.wantArgs, b.args)
		})
	}
}
