package domain

// TopicType classifies a topic. Unlike reviews there is no "other" topic.
type TopicType string

const (
	TopicTypeBugReport      TopicType = "bugReport"
	TopicTypeFeatureRequest TopicType = "featureRequest"
)

// NormalizeTopicType maps legacy category names onto the current set.
func NormalizeTopicType(s string) TopicType {
	switch s {
	case legacyProblem:
		return TopicTypeBugReport
	case legacyInquiry:
		return TopicTypeFeatureRequest
	default:
		return TopicType(s)
	}
}

// Topic groups reviews that describe the same issue or request. Reviews is
// never stored; it is filled from reviews whose TopicID references the topic.
type Topic struct {
	ID       string    `json:"id"`
	FeedID   string    `json:"feedId,omitempty"`
	Keywords []string  `json:"keywords"`
	Summary  string    `json:"summary"`
	Type     TopicType `json:"type"`
	Reviews  []Review  `json:"reviews"`
}

// TopicWithCounts is a topic listing entry with its window counts.
type TopicWithCounts struct {
	Topic
	Counts any `json:"counts"`
}
