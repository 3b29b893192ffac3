// Package kafka publishes integration events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/plantnet/plantnet-api/internal/shared/events"
)

// Publisher writes events as JSON messages keyed by the event key so that
// all events of one aggregate land on the same partition.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher builds a writer for brokers and topic. No connection is made
// until the first publish.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	clean := make([]string, 0, len(brokers))
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			clean = append(clean, b)
		}
	}
	if len(clean) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, errors.New("kafka: topic is empty")
	}
	return &Publisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(clean...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}}, nil
}

func (p *Publisher) Publish(ctx context.Context, evts ...events.Event) error {
	if len(evts) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(evts))
	for _, evt := range evts {
		msg, err := toMessage(evt)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka: write messages: %w", err)
	}
	return nil
}

// Close flushes pending batches.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func toMessage(evt events.Event) (kafka.Message, error) {
	value, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: marshal %s: %w", evt.Name, err)
	}
	return kafka.Message{
		Key:   []byte(evt.Key),
		Value: value,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-name", Value: []byte(evt.Name)},
		},
	}, nil
}

var _ events.Publisher = (*Publisher)(nil)
