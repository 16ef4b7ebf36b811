package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"
)

// EnsureTopics creates the given topics on the cluster controller. Topics
// that already exist are left untouched.
func EnsureTopics(ctx context.Context, config *Config, topics []TopicConfig) error {
	if len(config.Brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", config.Brokers[0])
	if err != nil {
		return fmt.Errorf("failed to dial broker %s: %w", config.Brokers[0], err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to resolve cluster controller: %w", err)
	}

	controllerConn, err := kafka.DialContext(ctx, "tcp",
		net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("failed to dial controller: %w", err)
	}
	defer controllerConn.Close()

	specs := make([]kafka.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		specs = append(specs, kafka.TopicConfig{
			Topic:             topic.Name,
			NumPartitions:     topic.Partitions,
			ReplicationFactor: topic.ReplicationFactor,
			ConfigEntries: []kafka.ConfigEntry{
				{ConfigName: "retention.ms", ConfigValue: strconv.FormatInt(topic.RetentionMs, 10)},
			},
		})
	}

	if err := controllerConn.CreateTopics(specs...); err != nil {
		if errors.Is(err, kafka.TopicAlreadyExists) {
			return nil
		}
		return fmt.Errorf("failed to create topics: %w", err)
	}

	return nil
}
