// Package publisher streams replayed building snapshots to Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

// Message is the JSON payload of one published snapshot
type Message struct {
	SimulatorName string                `json:"simulatorName"`
	Row           int                   `json:"row"`
	Timestamp     time.Time             `json:"timestamp"`
	Sensor        core.SensorReading    `json:"sensor"`
	Energy        *core.EnergyRecord    `json:"energy,omitempty"`
	Equipment     *core.EquipmentRecord `json:"equipment,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes snapshots keyed by sensor id
type Kafka struct {
	name   string
	topic  string
	writer messageWriter
}

// NewKafka creates a publisher writing to topic on the given brokers
func NewKafka(simulatorName string, brokers []string, topic string) *Kafka {
	log.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Msg("Kafka publisher configured")

	return &Kafka{
		name:  simulatorName,
		topic: topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Name identifies the sink in logs and metrics
func (k *Kafka) Name() string {
	return "kafka"
}

// Publish writes one snapshot
func (k *Kafka) Publish(ctx context.Context, snap core.Snapshot) error {
	msg, err := BuildMessage(k.name, snap)
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write to topic %s: %w", k.topic, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer
func (k *Kafka) Close() error {
	return k.writer.Close()
}

// BuildMessage encodes a snapshot as a Kafka message
func BuildMessage(simulatorName string, snap core.Snapshot) (kafka.Message, error) {
	payload := Message{
		SimulatorName: simulatorName,
		Row:           snap.Row,
		Timestamp:     snap.Sensor.Timestamp,
		Sensor:        snap.Sensor,
		Energy:        snap.Energy,
		Equipment:     snap.Equipment,
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return kafka.Message{
		Key:   []byte(snap.Sensor.SensorID),
		Value: value,
		Time:  snap.Sensor.Timestamp,
	}, nil
}
