package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"workorders/internal/core/domain/model/workorder"

	"github.com/segmentio/kafka-go"
)

// StatusChangedEvent is the message published for every audit entry.
type StatusChangedEvent struct {
	Event       string    `json:"event"`
	WorkOrderID string    `json:"workOrderId"`
	Number      string    `json:"number"`
	Sequence    int       `json:"sequence"`
	BeginStatus string    `json:"beginStatus"`
	EndStatus   string    `json:"endStatus"`
	Action      string    `json:"action"`
	ActorID     string    `json:"actorId"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// EventPublisher implements ports.WorkOrderEventPublisher on a Kafka topic.
// Messages are keyed by work order id so a consumer sees one work order's
// changes in order.
type EventPublisher struct {
	writer MessageWriter
}

// NewEventPublisher takes a writer bound to the events topic.
func NewEventPublisher(writer MessageWriter) *EventPublisher {
	return &EventPublisher{writer: writer}
}

func (p *EventPublisher) Publish(ctx context.Context, events ...workorder.StatusChanged) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := encodeEvent(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d events: %w", len(msgs), err)
	}
	return nil
}

func encodeEvent(e workorder.StatusChanged) (kafka.Message, error) {
	payload := StatusChangedEvent{
		Event:       e.EventName(),
		WorkOrderID: e.WorkOrderID.String(),
		Number:      e.Number,
		Sequence:    e.Sequence,
		BeginStatus: e.BeginStatus.Key(),
		EndStatus:   e.EndStatus.Key(),
		Action:      e.Action,
		ActorID:     e.ActorID.String(),
		OccurredAt:  e.OccurredAt,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(payload.WorkOrderID),
		Value: data,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(payload.Event)},
		},
	}, nil
}
