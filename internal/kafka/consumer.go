package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ms-seating/internal/logger"
	"ms-seating/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader messageReader
	topic  string
	Logger *logger.Logger
}

// NewConsumer joins a consumer group of its own so that every instance sees
// every seat change
func NewConsumer(brokers []string, topic string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     "seating-" + uuid.NewString(),
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
	})
	return &Consumer{reader: reader, topic: topic, Logger: log}
}

// Start hands every decoded seat change to handler until ctx is cancelled
func (c *Consumer) Start(ctx context.Context, handler func(event models.SeatStatusChangeEventDto)) error {
	c.Logger.LogKafka("CONSUME", c.topic, "consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			c.Logger.Error("KAFKA", fmt.Sprintf("Error reading message: %v", err))
			return err
		}

		var event models.SeatStatusChangeEventDto
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.Logger.Warn("KAFKA", fmt.Sprintf("Failed to unmarshal message at offset %d: %v", msg.Offset, err))
			continue
		}

		c.Logger.Debug("KAFKA", fmt.Sprintf("Received seat change %s -> %s", event.SeatID, event.Status))
		handler(event)
	}
}

// Listen makes the consumer usable as a change notifier
func (c *Consumer) Listen(ctx context.Context, onChange func()) error {
	return c.Start(ctx, func(models.SeatStatusChangeEventDto) { onChange() })
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
