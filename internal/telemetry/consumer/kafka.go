// Package consumer reads telemetry events back off Kafka and hands them to a sink.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"internship-portal/backend/internal/logger"
	"internship-portal/backend/internal/telemetry"
)

const sinkTimeout = 10 * time.Second

// messageReader is the subset of *kafka.Reader the consumer uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConsumer delivers every decodable event on the topic to sink.
type KafkaConsumer struct {
	reader messageReader
	sink   telemetry.EventEmitter
	log    *zap.Logger
}

// NewKafkaConsumer returns a consumer in the given group. log may be nil.
func NewKafkaConsumer(brokers []string, topic, groupID string, sink telemetry.EventEmitter, log *zap.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		CommitInterval: time.Second,
	})
	return &KafkaConsumer{reader: reader, sink: sink, log: logger.OrGlobal(log)}
}

// Run reads until ctx ends. Read and sink failures are logged and skipped.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			c.log.Warn("telemetry consumer: kafka read", zap.Error(err))
			continue
		}
		c.handle(ctx, msg)
	}
}

func (c *KafkaConsumer) handle(ctx context.Context, msg kafka.Message) {
	var event telemetry.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil || event.Type == "" {
		c.log.Warn("telemetry consumer: skipping undecodable message",
			zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset), zap.Error(err))
		return
	}
	sinkCtx, cancel := context.WithTimeout(ctx, sinkTimeout)
	defer cancel()
	if err := c.sink.Emit(sinkCtx, &event); err != nil {
		c.log.Warn("telemetry consumer: sink failed", zap.String("event_type", event.Type), zap.Error(err))
	}
}

// Close closes the Kafka reader.
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
