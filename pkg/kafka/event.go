package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope written to every topic. Payload holds the
// event-specific body.
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	SubjectID     string          `json:"subjectId"`
	SubjectKind   string          `json:"subjectKind"`
	ActorID       string          `json:"actorId,omitempty"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlationId,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEvent builds an envelope around payload.
func NewEvent(eventType, subjectKind, subjectID, source string, payload any) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return &Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		SubjectID:   subjectID,
		SubjectKind: subjectKind,
		Source:      source,
		OccurredAt:  time.Now().UTC(),
		Payload:     raw,
	}, nil
}

// WithActor records the user that caused the event.
func (e *Event) WithActor(userID string) *Event {
	e.ActorID = userID
	return e
}

// WithCorrelationID links the event to the request that produced it.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// Marshal encodes the envelope.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parses an envelope read from a topic.
func DecodeEvent(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &e, nil
}

// DecodePayload unmarshals the event body into target.
func (e *Event) DecodePayload(target any) error {
	return json.Unmarshal(e.Payload, target)
}
