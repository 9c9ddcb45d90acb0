package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/johnjung/speculative-weather-report/internal/config"
	"github.com/johnjung/speculative-weather-report/internal/domain"
	"github.com/johnjung/speculative-weather-report/internal/forecast"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces forecast snapshots to a Kafka topic.
// It implements pipeline.SnapshotWriter.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// WriteSnapshot serializes and publishes one forecast snapshot.
func (w *Writer) WriteSnapshot(ctx context.Context, s forecast.Snapshot) error {
	msg, err := serializeToMessage(s)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write snapshot %s: %w", msg.Key, err)
	}
	w.logger.Debug("snapshot written", "topic", w.writer.Topic, "key", string(msg.Key))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a snapshot into a Kafka message keyed by the
// moment it describes.
func serializeToMessage(s forecast.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(s.Forecast)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize forecast snapshot: %w", err)
	}

	headers := []kafkago.Header{
		{Key: "generated_at", Value: []byte(s.GeneratedAt.Format(time.RFC3339))},
	}
	if year, ok := s.SimulationYear(); ok {
		headers = append(headers, kafkago.Header{Key: "simulation_year", Value: []byte(strconv.Itoa(year))})
	}

	return kafkago.Message{
		Key:     []byte(s.At.Format(domain.DateLayout)),
		Value:   data,
		Headers: headers,
	}, nil
}
