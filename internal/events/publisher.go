package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	eventSource  = "advising-service"
	eventVersion = "1.0"
)

// Event types published after successful reconciliation writes.
const (
	DegreeCreated  = "degree.created"
	DegreeUpdated  = "degree.updated"
	DegreeDeleted  = "degree.deleted"
	RoadmapCreated = "roadmap.created"
	RoadmapUpdated = "roadmap.updated"
	RoadmapDeleted = "roadmap.deleted"
	ProfileUpdated = "profile.updated"
)

// Event is the envelope for document change notifications. Delivery
// semantics are the consumer's concern; the engine only publishes.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// DocumentChange is the payload of degree/roadmap/profile events.
type DocumentChange struct {
	Collection string   `json:"collection"`
	Key        string   `json:"key"`
	ChangedBy  string   `json:"changed_by"`
	Touched    []string `json:"touched,omitempty"`
}

// NewEvent builds an event envelope with a fresh id and timestamp.
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes document change events.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// ===== KAFKA PUBLISHER =====

// KafkaEventPublisher publishes events to Kafka through watermill.
type KafkaEventPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

func NewKafkaEventPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaEventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}, nil
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.Debug("Event published", "event_id", event.ID, "event_type", event.Type)
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// ===== MOCK PUBLISHER =====

// MockEventPublisher records events in memory for tests and for running
// without a broker.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []*Event
	logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (p *MockEventPublisher) Publish(ctx context.Context, event *Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
	if p.logger != nil {
		p.logger.Debug("Event recorded", "event_id", event.ID, "event_type", event.Type)
	}
	return nil
}

func (p *MockEventPublisher) Close() error {
	return nil
}

func (p *MockEventPublisher) GetPublishedEvents() []*Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *MockEventPublisher) ClearEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = nil
}
