package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer used for publishing.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a topic, keyed by event name.
type KafkaPublisher struct {
	w       MessageWriter
	timeout time.Duration
}

// NewKafkaPublisher connects to a comma-separated broker list.
func NewKafkaPublisher(brokers, topic string) *KafkaPublisher {
	var addrs []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	})
}

// NewKafkaPublisherWithWriter wraps an existing writer.
func NewKafkaPublisherWithWriter(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w, timeout: 10 * time.Second}
}

// Publish writes e as JSON with its id in the "event-id" header.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(e.Name),
		Value:   value,
		Headers: []kafka.Header{{Key: "event-id", Value: []byte(e.ID)}},
		Time:    e.At,
	})
	if err != nil {
		return fmt.Errorf("kafka publish %s: %w", e.Name, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
