package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// watermillPublisher wraps any watermill publisher into the Publisher interface.
type watermillPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func (p *watermillPublisher) PublishReportEvent(ctx context.Context, event *ReportEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal report event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.SetContext(ctx)

	if err := p.publisher.Publish(ReportEventsTopic, msg); err != nil {
		return fmt.Errorf("failed to publish report event: %w", err)
	}
	return nil
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}

// InProcessBus is the default event transport: a watermill gochannel
// pub/sub with an audit subscriber logging every lifecycle event.
type InProcessBus struct {
	pubSub *gochannel.GoChannel
	logger *slog.Logger
	wg     sync.WaitGroup
}

func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	return &InProcessBus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger)),
		logger: logger,
	}
}

func (b *InProcessBus) Publisher() Publisher {
	return &watermillPublisher{publisher: b.pubSub, logger: b.logger}
}

// RunAuditSubscriber consumes lifecycle events and writes them to the
// structured log until ctx is cancelled.
func (b *InProcessBus) RunAuditSubscriber(ctx context.Context) error {
	messages, err := b.pubSub.Subscribe(ctx, ReportEventsTopic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to report events: %w", err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range messages {
			var event ReportEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.logger.Error("Failed to decode report event", "error", err, "message_id", msg.UUID)
				msg.Ack()
				continue
			}

			b.logger.Info("Report lifecycle event",
				"event_id", event.ID,
				"event_type", event.Type,
				"report_id", event.ReportID,
				"student_id", event.StudentID,
				"purpose", event.Purpose,
				"status", event.Status,
				"actor_id", event.ActorID)
			msg.Ack()
		}
	}()

	return nil
}

func (b *InProcessBus) Close() error {
	err := b.pubSub.Close()
	b.wg.Wait()
	return err
}

// NewKafkaPublisher emits lifecycle events to Kafka for downstream
// consumers. Used instead of the in-process bus when brokers are configured.
func NewKafkaPublisher(brokers []string, logger *slog.Logger) (Publisher, error) {
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

	return &watermillPublisher{publisher: publisher, logger: logger}, nil
}

// MockPublisher records published events for tests.
type MockPublisher struct {
	mu     sync.Mutex
	events []*ReportEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishReportEvent(ctx context.Context, event *ReportEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

func (m *MockPublisher) PublishedEvents() []*ReportEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ReportEvent, len(m.events))
	copy(out, m.events)
	return out
}
