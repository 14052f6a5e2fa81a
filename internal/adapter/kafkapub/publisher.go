// Package kafkapub publishes hotspot snapshots to a Kafka topic so
// downstream consumers (alerting, historical analysis) can follow demand
// concentrations without querying the dashboard.
package kafkapub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/tripgrid/taxi-hotspots/internal/config"
	"github.com/tripgrid/taxi-hotspots/internal/domain"
	"github.com/tripgrid/taxi-hotspots/internal/pipeline"
)

// Snapshot is the serialized form of a pipeline result, minus the row data
// which is too large for a message bus and reproducible from the criteria.
type Snapshot struct {
	ID          string                `json:"id"`
	Criteria    domain.FilterCriteria `json:"criteria"`
	Clusters    []domain.Cluster      `json:"clusters"`
	KPIs        domain.KPISet         `json:"kpis"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Publisher produces snapshot messages to the configured sink topic.
// It implements pipeline.SnapshotPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured snapshot topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSnapshotTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishSnapshot serializes and publishes one result to the sink topic.
func (p *Publisher) PublishSnapshot(ctx context.Context, result pipeline.Result) error {
	msg, err := serializeToMessage(result)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a result into a Kafka message keyed by a
// fresh snapshot ID.
func serializeToMessage(result pipeline.Result) (kafkago.Message, error) {
	snapshot := Snapshot{
		ID:          uuid.NewString(),
		Criteria:    result.Criteria,
		Clusters:    result.Clusters,
		KPIs:        result.KPIs,
		GeneratedAt: result.GeneratedAt,
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(snapshot.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "trip_count", Value: []byte(strconv.Itoa(result.KPIs.TripCount))},
			{Key: "generated_at", Value: []byte(result.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
