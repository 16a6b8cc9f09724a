package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "course-service"
	EventVersion = "1.0"
)

// Event is the envelope for every notification message
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent wraps data in an envelope; Type doubles as the topic
func NewEvent(eventType string, data interface{}) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event data: %w", eventType, err)
	}

	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	}, nil
}

// DecodeData unmarshals the payload into dest
func (e *Event) DecodeData(dest interface{}) error {
	if err := json.Unmarshal(e.Data, dest); err != nil {
		return fmt.Errorf("failed to decode %s event data: %w", e.Type, err)
	}
	return nil
}

// EventPublisher publishes events to the notification channel
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
