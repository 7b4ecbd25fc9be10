package queue

import (
	"context"
	"encoding/json"
	"fmt"

	kafka "github.com/segmentio/kafka-go"

	"github.com/Sh00ty/fleet-monitor/internal/models"
)

// PlacementQueue publishes placement events to the topic the
// health-check nodes consume new targets from.
type PlacementQueue struct {
	writer *kafka.Writer
}

func NewPlacementQueue(addr string, topic string) *PlacementQueue {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(addr),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
	return &PlacementQueue{
		writer: writer,
	}
}

func (q *PlacementQueue) WriteEvents(ctx context.Context, events []models.PlacementEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		value, err := json.Marshal(event)
		if err != nil {
			return 0, fmt.Errorf("failed to encode placement event for fleet %s: %w", event.Fleet, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(event.Fleet),
			Value: value,
		})
	}

	err := q.writer.WriteMessages(ctx, msgs...)
	if err != nil {
		return 0, fmt.Errorf("failed to write placement events: %w", err)
	}
	return len(msgs), nil
}

func (q *PlacementQueue) Close() error {
	return q.writer.Close()
}
