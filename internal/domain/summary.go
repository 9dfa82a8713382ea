package domain

import "fmt"

// ReviewSummary holds feed-level statistics for a window.
type ReviewSummary struct {
	FeatureRequests int64   `json:"featureRequests"`
	BugReports      int64   `json:"bugReports"`
	Other           int64   `json:"other"`
	OldReviews      int64   `json:"oldReviews"`
	Topics          int64   `json:"topics"`
	AverageRating   float64 `json:"averageRating"`
}

// AddTypeCount adds n reviews of type t. Types outside the known set are
// dropped.
func (s *ReviewSummary) AddTypeCount(t ReviewType, n int64) {
	switch t {
	case ReviewTypeFeatureRequest:
		s.FeatureRequests += n
	case ReviewTypeBugReport:
		s.BugReports += n
	case ReviewTypeOther:
		s.Other += n
	}
}

// TopicSummary holds one topic's statistics for a window.
type TopicSummary struct {
	NewReviews    int64   `json:"newReviews"`
	OldReviews    int64   `json:"oldReviews"`
	AverageRating float64 `json:"averageRating"`
}

// Increase returns the growth ratio (new+old)/old - 1, or nil when the topic
// had no reviews before the window.
func (s TopicSummary) Increase() *float64 {
	if s.OldReviews <= 0 {
		return nil
	}
	v := float64(s.NewReviews+s.OldReviews)/float64(s.OldReviews) - 1
	return &v
}

// SummaryShape selects how per-topic counts are rendered.
type SummaryShape string

const (
	// ShapeCounts renders newReviews, oldReviews and averageRating.
	ShapeCounts SummaryShape = "counts"
	// ShapeGrowth renders newReviews, increase and averageRating.
	ShapeGrowth SummaryShape = "growth"
)

// ParseSummaryShape validates s. The empty string selects ShapeCounts.
func ParseSummaryShape(s string) (SummaryShape, error) {
	switch SummaryShape(s) {
	case "", ShapeCounts:
		return ShapeCounts, nil
	case ShapeGrowth:
		return ShapeGrowth, nil
	default:
		return "", fmt.Errorf("unknown summary shape %q", s)
	}
}

// GrowthSummary is the growth rendering of a TopicSummary. Increase is
// omitted when it is undefined.
type GrowthSummary struct {
	NewReviews    int64    `json:"newReviews"`
	Increase      *float64 `json:"increase,omitempty"`
	AverageRating float64  `json:"averageRating"`
}

// Render returns s in the requested shape.
func (s TopicSummary) Render(shape SummaryShape) any {
	if shape == ShapeGrowth {
		return GrowthSummary{
			NewReviews:    s.NewReviews,
			Increase:      s.Increase(),
			AverageRating: s.AverageRating,
		}
	}
	return s
}
