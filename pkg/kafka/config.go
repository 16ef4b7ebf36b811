package kafka

import (
	"time"
)

// Config holds Kafka configuration
type Config struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string

	// Producer settings
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int // 0: no ack, 1: leader ack, -1: all replicas ack

	// Consumer settings
	MinBytes      int
	MaxBytes      int
	MaxWait       time.Duration
	CommitTimeout time.Duration

	// TLS settings
	TLSEnabled bool
	TLSCert    string
	TLSKey     string
	TLSCA      string

	// SASL settings
	SASLEnabled   bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:       []string{"localhost:9092"},
		ConsumerGroup: "inventory-lifecycle-group",
		ClientID:      "inventory-lifecycle",

		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1, // All replicas

		MinBytes:      1,
		MaxBytes:      10e6, // 10MB
		MaxWait:       500 * time.Millisecond,
		CommitTimeout: 5 * time.Second,

		TLSEnabled:  false,
		SASLEnabled: false,
	}
}

// Topics contains all Kafka topic names used by the service
var Topics = struct {
	StockEvents       string
	LocationEvents    string
	MovementEvents    string
	PickingEvents     string
	ConsignmentEvents string
}{
	StockEvents:       "wms.stock.events",
	LocationEvents:    "wms.location.events",
	MovementEvents:    "wms.movement.events",
	PickingEvents:     "wms.picking.events",
	ConsignmentEvents: "wms.consignment.events",
}

// TopicConfig holds configuration for a Kafka topic
type TopicConfig struct {
	Name              string
	Partitions        int
	ReplicationFactor int
	RetentionMs       int64
}

// DefaultTopicConfigs returns default configurations for the service topics
func DefaultTopicConfigs() []TopicConfig {
	const week = 7 * 24 * 60 * 60 * 1000
	return []TopicConfig{
		{Name: Topics.StockEvents, Partitions: 12, ReplicationFactor: 3, RetentionMs: week},
		{Name: Topics.LocationEvents, Partitions: 6, ReplicationFactor: 3, RetentionMs: week},
		{Name: Topics.MovementEvents, Partitions: 6, ReplicationFactor: 3, RetentionMs: week},
		{Name: Topics.PickingEvents, Partitions: 12, ReplicationFactor: 3, RetentionMs: week},
		{Name: Topics.ConsignmentEvents, Partitions: 6, ReplicationFactor: 3, RetentionMs: 30 * 24 * 60 * 60 * 1000},
	}
}
