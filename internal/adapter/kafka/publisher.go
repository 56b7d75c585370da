// Package kafka announces newly installed telemetry series on a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Chuchoruto/ISS-Tracker/internal/domain"
	"github.com/Chuchoruto/ISS-Tracker/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes one message per successful series load.
// It implements service.LoadNotifier.
type Publisher struct {
	writer  messageWriter
	topic   string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a Kafka producer for the load-event topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	return &Publisher{writer: w, topic: topic, logger: logger, metrics: metrics}
}

// NotifyLoaded publishes the summary of a freshly loaded series.
func (p *Publisher) NotifyLoaded(ctx context.Context, summary domain.SeriesSummary) error {
	msg, err := serializeToMessage(summary)
	if err != nil {
		p.metrics.LoadEventsPublished.WithLabelValues("error").Inc()
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.LoadEventsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("publish load event to %s: %w", p.topic, err)
	}
	p.metrics.LoadEventsPublished.WithLabelValues("success").Inc()
	p.logger.Debug("load event published", "topic", p.topic, "count", summary.Count)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a SeriesSummary into a Kafka message keyed by
// object id, so every load of one object lands on the same partition.
func serializeToMessage(summary domain.SeriesSummary) (kafkago.Message, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize series summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(summary.ObjectID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "object_name", Value: []byte(summary.ObjectName)},
			{Key: "loaded_at", Value: []byte(summary.LoadedAt.UTC().Format(time.RFC3339))},
			{Key: "count", Value: []byte(strconv.Itoa(summary.Count))},
		},
	}, nil
}
