package repository

import (
	"context"

	"SentiPulse/internal/domain/models"
	"SentiPulse/internal/domain/repository"
	pkgkafka "SentiPulse/pkg/kafka"
)

// KafkaAlertSink publishes fired alerts to a Kafka topic so downstream
// consumers (notification bots, trading systems) can react to extremes.
type KafkaAlertSink struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAlertSink creates a Kafka alert sink.
func NewKafkaAlertSink(producer *pkgkafka.Producer, topic string) repository.AlertSink {
	return &KafkaAlertSink{producer: producer, topic: topic}
}

func (s *KafkaAlertSink) PublishAlert(ctx context.Context, a *models.Alert) error {
	return s.producer.Publish(ctx, s.topic, []byte(a.AlertType), map[string]interface{}{
		"id":            a.ID,
		"timestamp":     a.Timestamp,
		"alert_type":    a.AlertType,
		"sentiment_pct": a.SentimentPct,
		"message":       a.Message,
	})
}

func (s *KafkaAlertSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
