package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"ms-seating/internal/models"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer messageWriter
	Topic  string
}

// NewProducer keys messages by seat id so every change of one seat lands on
// the same partition in order
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: writer, Topic: topic}
}

// PublishSeatChange streams one persisted seat change
func (p *Producer) PublishSeatChange(ctx context.Context, event models.SeatStatusChangeEventDto) error {
	msg, err := seatChangeMessage(event)
	if err != nil {
		return err
	}
	if err := p.Writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish seat change %s to %s: %w", event.SeatID, p.Topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

func seatChangeMessage(event models.SeatStatusChangeEventDto) (kafka.Message, error) {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.SeatID),
		Value: msgBytes,
		Headers: []kafka.Header{
			{Key: "source", Value: []byte(event.Source)},
		},
	}, nil
}
