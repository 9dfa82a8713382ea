package domain

import "time"

// Feed scopes the reviews and topics of one monitored application.
type Feed struct {
	ID        string    `json:"id"`
	AppName   string    `json:"appName"`
	RepoName  string    `json:"repoName"`
	CreatedAt time.Time `json:"createdAt"`
}

// AppTemplate is a template application whose topics and reviews are copied
// into every feed created from it.
type AppTemplate struct {
	Name         string           `json:"name"`
	Topics       []TemplateTopic  `json:"topics"`
	OtherReviews []TemplateReview `json:"otherReviews"`
}

// TemplateTopic is a topic in an AppTemplate with its reviews inline.
type TemplateTopic struct {
	Keywords []string         `json:"keywords"`
	Summary  string           `json:"summary"`
	Type     string           `json:"type"`
	Reviews  []TemplateReview `json:"reviews"`
}

// TemplateReview is a review in an AppTemplate.
type TemplateReview struct {
	Date     time.Time `json:"date"`
	Platform string    `json:"platform"`
	Type     string    `json:"type"`
	Rating   *int      `json:"rating,omitempty"`
	Text     string    `json:"text"`
}

// ReviewCount returns the number of reviews the template will copy.
func (t *AppTemplate) ReviewCount() int {
	n := len(t.OtherReviews)
	for _, topic := range t.Topics {
		n += len(topic.Reviews)
	}
	return n
}
