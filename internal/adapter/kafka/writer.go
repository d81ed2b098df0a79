package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/compliance-dashboard/internal/config"
	"github.com/couchcryptid/compliance-dashboard/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// SnapshotMessage is the value of every published message.
type SnapshotMessage struct {
	Snapshot domain.Snapshot `json:"snapshot"`
	Summary  domain.Summary  `json:"summary"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes each committed snapshot to a Kafka topic.
// It implements pipeline.Sink.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured snapshot topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSnapshotTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes the snapshot with its summary and writes one message
// keyed by load id.
func (p *Publisher) Publish(ctx context.Context, snap domain.Snapshot) error {
	msg, err := serializeToMessage(snap)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write snapshot %s: %w", snap.LoadID, err)
	}
	p.logger.Debug("snapshot published", "load_id", snap.LoadID, "records", len(snap.Records))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a snapshot into a Kafka message.
func serializeToMessage(snap domain.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(SnapshotMessage{Snapshot: snap, Summary: snap.Summary()})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(snap.LoadID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "origin", Value: []byte(snap.Origin)},
			{Key: "degraded", Value: []byte(strconv.FormatBool(snap.Degraded))},
			{Key: "loaded_at", Value: []byte(snap.LoadedAt.Format(time.RFC3339))},
		},
	}, nil
}

// DecodeMessage parses a message produced by Publisher.
func DecodeMessage(msg kafkago.Message) (SnapshotMessage, error) {
	var out SnapshotMessage
	if err := json.Unmarshal(msg.Value, &out); err != nil {
		return SnapshotMessage{}, fmt.Errorf("decode snapshot message: %w", err)
	}
	return out, nil
}
