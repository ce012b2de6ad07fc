package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/angelmondragon/tableside-backend/pkg/config"
)

// kafkaWriter is the subset of *kafka.Writer the publisher uses.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// kafkaClient owns the writer and knows how to reach a broker for readiness.
type kafkaClient struct {
	brokers []string
	writer  kafkaWriter
}

func newKafkaClient(cfg config.KafkaConfig) (*kafkaClient, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	acks := kafka.RequireOne
	if cfg.RequiredAcksAll {
		acks = kafka.RequireAll
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           acks,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: cfg.AllowAutoTopicCreate,
	}
	return &kafkaClient{brokers: cfg.Brokers, writer: writer}, nil
}

// Ping dials the first reachable broker.
func (c *kafkaClient) Ping(ctx context.Context) error {
	var lastErr error
	for _, broker := range c.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	return fmt.Errorf("no kafka broker reachable: %w", lastErr)
}

func (c *kafkaClient) Publish(ctx context.Context, msg kafka.Message) error {
	return c.writer.WriteMessages(ctx, msg)
}

func (c *kafkaClient) Close() error {
	return c.writer.Close()
}
