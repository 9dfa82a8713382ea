package domain

import (
	"strings"
	"time"
)

// Platform is the store a review was submitted to.
type Platform string

const (
	PlatformIOS     Platform = "iOS"
	PlatformAndroid Platform = "Android"
)

// AllPlatforms returns every supported platform.
func AllPlatforms() []Platform {
	return []Platform{PlatformIOS, PlatformAndroid}
}

// ParsePlatform matches s case-insensitively against the supported platforms.
func ParsePlatform(s string) (Platform, bool) {
	for _, p := range AllPlatforms() {
		if strings.EqualFold(s, string(p)) {
			return p, true
		}
	}
	return "", false
}

// ReviewType classifies the intent of a review.
type ReviewType string

const (
	ReviewTypeBugReport      ReviewType = "bugReport"
	ReviewTypeFeatureRequest ReviewType = "featureRequest"
	ReviewTypeOther          ReviewType = "other"
)

// Category names written by older importers.
const (
	legacyProblem    = "PROBLEM"
	legacyInquiry    = "INQUIRY"
	legacyIrrelevant = "IRRELEVANT"
)

// NormalizeReviewType maps legacy category names onto the current set.
// Unknown values are returned unchanged and count towards no bucket.
func NormalizeReviewType(s string) ReviewType {
	switch s {
	case legacyProblem:
		return ReviewTypeBugReport
	case legacyInquiry:
		return ReviewTypeFeatureRequest
	case legacyIrrelevant:
		return ReviewTypeOther
	default:
		return ReviewType(s)
	}
}

// Review is a single app-store review.
type Review struct {
	ID       string     `json:"id"`
	FeedID   string     `json:"feedId,omitempty"`
	Date     time.Time  `json:"date"`
	Platform Platform   `json:"platform"`
	Type     ReviewType `json:"type"`
	// Rating is nil for reviews imported before ratings were collected.
	Rating *int   `json:"rating,omitempty"`
	Text   string `json:"text"`
	Flag   bool   `json:"flag"`
	// TopicID is empty when the review is not attached to a topic.
	TopicID string `json:"topicId,omitempty"`
}

// Window is an inclusive date range.
type Window struct {
	From time.Time
	To   time.Time
}

// Valid reports whether the window is non-empty.
func (w Window) Valid() bool {
	return !w.To.Before(w.From)
}
