package repository

import (
	"context"

	"HashArb/pkg/kafka"
)

// KafkaSink publishes strategy events to a Kafka topic, keyed by event type
// so consumers see per-type ordering.
type KafkaSink struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaSink(producer *kafka.Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Publish(ctx context.Context, eventType string, payload interface{}) error {
	return s.producer.Publish(ctx, s.topic, []byte(eventType), payload)
}

func (s *KafkaSink) Close() error {
	return s.producer.Close()
}

// NoopSink drops events; used when Kafka is disabled.
type NoopSink struct{}

func (NoopSink) Publish(context.Context, string, interface{}) error { return nil }
func (NoopSink) Close() error                                       { return nil }
