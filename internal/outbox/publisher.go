package outbox

import (
	"context"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Event topics emitted by the order lifecycle.
const (
	TopicOrderPlaced    = "order.placed"
	TopicOrderAccepted  = "order.accepted"
	TopicOrderCancelled = "order.cancelled"
	TopicOrderCompleted = "order.completed"
	TopicReviewCreated  = "review.created"
)

// Publisher drains the outbox table to Kafka. When no brokers are
// configured the publisher is simply not started and events accumulate
// until a consumer is deployed.
type Publisher struct {
	DB       *gorm.DB
	Writer   *kafka.Writer
	Interval time.Duration
	Batch    int
}

func NewClient(brokersCSV string) []string {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewPublisher(db *gorm.DB, brokers []string, topic string) *Publisher {
	return &Publisher{
		DB: db,
		Writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		Interval: 2 * time.Second,
		Batch:    100,
	}
}

// Run polls for pending events until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	defer p.Writer.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.drain(ctx)
		}
	}
}

func (p *Publisher) drain(ctx context.Context) {
	events, err := FetchPending(p.DB, p.Batch)
	if err != nil {
		logrus.Errorf("outbox fetch error: %v", err)
		return
	}

	for _, evt := range events {
		msg := kafka.Message{
			Key:   []byte(evt.Key),
			Value: []byte(evt.Payload),
			Time:  time.Now().UTC(),
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(evt.EventID)},
				{Key: "topic", Value: []byte(evt.Topic)},
			},
		}
		if err := p.Writer.WriteMessages(ctx, msg); err != nil {
			logrus.Errorf("outbox publish error for event %s: %v", evt.EventID, err)
			return // keep ordering, retry from this event next tick
		}
		if err := MarkSent(p.DB, evt.ID); err != nil {
			logrus.Errorf("outbox mark-sent error for event %s: %v", evt.EventID, err)
			return
		}
	}
}
