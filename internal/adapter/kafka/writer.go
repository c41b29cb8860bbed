// Package kafka publishes download progress events to an audit topic.
// The sink is feature-flagged; the service runs fully without it.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/geokshitij/flowData/internal/config"
	"github.com/geokshitij/flowData/internal/domain"
)

// Writer produces progress events to a Kafka topic.
// It implements downloader.EventSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured audit topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one progress event to the audit topic. Severity is the
// message key so error events can be consumed selectively.
func (w *Writer) Publish(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize progress event: %w", err)
	}
	return w.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.Severity),
		Value: data,
	})
}

func (w *Writer) Close() error {
	return w.writer.Close()
}
