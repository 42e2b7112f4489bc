// Package kafka feeds the batcher with event records consumed from a
// Kafka topic.
package kafka

import (
	"context"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/tsouza/eventdump/pkg/config"
	"github.com/tsouza/eventdump/pkg/event"
)

const (
	minBytes       = 1        // fetch even single small messages promptly
	maxBytes       = 10 << 20 // 10MB fetch ceiling
	commitInterval = time.Second
)

// Sink receives each decoded record, in partition order.
type Sink func(*event.Record)

type Consumer struct {
	reader *kafkago.Reader
	log    *zap.Logger
}

func NewConsumer(cfg config.KafkaConfig, log *zap.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		CommitInterval: commitInterval,
	})
	return &Consumer{reader: reader, log: log}
}

// Run reads messages until ctx is cancelled, decoding each payload into
// a record and passing it to sink. Malformed payloads are logged and
// skipped; losing one bad message is preferable to stalling the
// partition.
func (c *Consumer) Run(ctx context.Context, sink Sink) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		rec, err := event.Decode(msg.Value)
		if err != nil {
			c.log.Warn("skipping malformed event payload",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			continue
		}
		sink(rec)
	}
}

func (c *Consumer) Close() error { return c.reader.Close() }
