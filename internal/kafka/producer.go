package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const requestIDHeader = "request_id"

// ToolInvocation is the audit record published for every tool call
type ToolInvocation struct {
	Tool       string                 `json:"tool"`
	Arguments  map[string]interface{} `json:"arguments"`
	IsError    bool                   `json:"is_error"`
	DurationMS int64                  `json:"duration_ms"`
	RequestID  string                 `json:"request_id,omitempty"`
	Subject    string                 `json:"subject,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Config holds the brokers and topic for tool invocation events
type Config struct {
	Brokers  []string
	Topic    string
	ClientID string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes tool invocation events to a single topic
type Producer struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewProducer creates a new Kafka producer for the audit topic
func NewProducer(cfg Config, logger *zap.Logger) *Producer {
	return &Producer{
		writer: newWriter(cfg),
		topic:  cfg.Topic,
		logger: logger,
	}
}

func newWriter(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Transport: &kafka.Transport{
			ClientID: cfg.ClientID,
		},
	}
}

// PublishToolInvocation writes one event keyed by tool name, so the events
// of a tool stay ordered on one partition.
func (p *Producer) PublishToolInvocation(ctx context.Context, event ToolInvocation) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal tool invocation: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Tool),
		Value: value,
		Time:  event.Timestamp,
	}
	if event.RequestID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: requestIDHeader, Value: []byte(event.RequestID)})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.topic, err)
	}

	p.logger.Debug("Tool invocation published",
		zap.String("topic", p.topic),
		zap.String("tool", event.Tool),
		zap.Bool("is_error", event.IsError))
	return nil
}

// Close flushes pending messages and closes the writer
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.String("topic", p.topic), zap.Error(err))
		return err
	}
	return nil
}
