//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/johnjung/speculative-weather-report/internal/adapter/kafka"
	"github.com/johnjung/speculative-weather-report/internal/config"
	"github.com/johnjung/speculative-weather-report/internal/dataset"
	"github.com/johnjung/speculative-weather-report/internal/forecast"
	"github.com/johnjung/speculative-weather-report/internal/observability"
	"github.com/johnjung/speculative-weather-report/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const (
	testTopic   = "test-forecasts"
	samplePath  = "../dataset/testdata/lcd_sample.csv"
	kafkaImage  = "confluentinc/confluent-local:7.5.0"
	readTimeout = 30 * time.Second
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("test-cluster"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// publishedSnapshot holds a message read back from the topic.
type publishedSnapshot struct {
	Key     string
	Headers map[string]string
	Body    map[string]any
}

func readSnapshot(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedSnapshot {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from forecast topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body), "unmarshal snapshot")
	return publishedSnapshot{Key: string(msg.Key), Headers: headers, Body: body}
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func newAssembler(t *testing.T, metrics *observability.Metrics) *forecast.Assembler {
	t.Helper()
	ds, err := dataset.Load(samplePath)
	require.NoError(t, err)

	opts := forecast.DefaultOptions()
	opts.HourlyCount, opts.DailyCount = 4, 2
	return forecast.NewAssembler(ds, opts, nil, discardLogger(), metrics)
}

// TestKafkaWriterRoundTrip writes one snapshot through kafka.Writer and reads
// it back with a plain consumer.
func TestKafkaWriterRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	a := newAssembler(t, observability.NewMetricsForTesting())
	at := time.Date(2010, time.May, 1, 19, 0, 0, 0, time.UTC)
	snap := forecast.Snapshot{At: at, GeneratedAt: at, Forecast: a.Assemble(at)}
	require.NoError(t, writer.WriteSnapshot(ctx, snap))

	got := readSnapshot(ctx, t, newConsumer(t, broker))
	assert.Equal(t, "2010-05-01T19:00:00", got.Key)

	_, err := time.Parse(time.RFC3339, got.Headers["generated_at"])
	require.NoError(t, err, "generated_at should be valid RFC3339")
	year, err := strconv.Atoi(got.Headers["simulation_year"])
	require.NoError(t, err)
	assert.GreaterOrEqual(t, year, 2060)

	assert.InDelta(t, 68, got.Body["temperature"], 0)
	assert.Equal(t, "6:51PM", got.Body["as_of"])
	assert.Equal(t, "unavailable", got.Body["wind_direction_and_speed"])
	assert.Len(t, got.Body["hourly"], 4)
	assert.Len(t, got.Body["daily"], 2)
}

// TestPublisherEndToEnd runs the publisher against real Kafka and verifies the
// immediate snapshot and the one published on the next tick.
func TestPublisherEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	clock := clockwork.NewFakeClockAt(time.Date(2010, time.May, 1, 7, 0, 0, 0, time.UTC))
	snapshotter := pipeline.NewSnapshotter(newAssembler(t, metrics), clock, discardLogger())
	p := pipeline.New(snapshotter, writer, clock, time.Hour, discardLogger(), metrics)

	runCtx, runCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(runCtx) }()

	consumer := newConsumer(t, broker)

	first := readSnapshot(ctx, t, consumer)
	assert.Equal(t, "2010-05-01T07:00:00", first.Key)
	assert.InDelta(t, 65, first.Body["temperature"], 0)
	assert.Equal(t, "13mph SW", first.Body["wind_direction_and_speed"])
	require.NoError(t, p.CheckReadiness(ctx))

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(6 * time.Hour)

	second := readSnapshot(ctx, t, consumer)
	assert.Equal(t, "2010-05-01T13:00:00", second.Key)
	assert.InDelta(t, 70, second.Body["temperature"], 0)
	assert.Equal(t, "still", second.Body["wind_direction_and_speed"])

	runCancel()
	require.NoError(t, <-errCh)
}
