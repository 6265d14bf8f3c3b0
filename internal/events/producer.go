package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rookgm/homechef/internal/logger"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"go.uber.org/zap"
)

const eventVersion = "1.0"

// Producer publishes domain events to kafka
type Producer struct {
	client *kgo.Client
	topic  string
}

// Credentials authenticate the producer with SASL/PLAIN
type Credentials struct {
	Username string
	Password string
}

// NewProducer creates kafka producer for topic. SASL is enabled when creds are complete.
func NewProducer(brokers []string, topic string, creds Credentials) (*Producer, error) {
	opts := clientOpts(brokers, creds)

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &Producer{
		client: client,
		topic:  topic,
	}, nil
}

func clientOpts(brokers []string, creds Credentials) []kgo.Opt {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProducerLinger(10 * time.Millisecond),
	}

	if creds.Username != "" && creds.Password != "" {
		opts = append(opts, kgo.SASL(plain.Auth{
			User: creds.Username,
			Pass: creds.Password,
		}.AsMechanism()))
	}

	return opts
}

// Publish sends event asynchronously; delivery failures are logged
func (p *Producer) Publish(ctx context.Context, event Event) error {
	record, err := p.record(event)
	if err != nil {
		return err
	}

	p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			logger.Log.Error("failed to produce event",
				zap.String("type", event.Type),
				zap.String("order", event.OrderID.String()),
				zap.Error(err))
			return
		}
		logger.Log.Debug("event produced",
			zap.String("type", event.Type),
			zap.Int32("partition", r.Partition),
			zap.Int64("offset", r.Offset))
	})

	return nil
}

// CreateChannel requests a chat channel between customer and chef for the order.
// It waits for the broker acknowledgement so the caller can retry on failure.
func (p *Producer) CreateChannel(ctx context.Context, req ChannelRequest) error {
	record, err := p.record(Event{
		Type:       TypeChatChannelRequested,
		OrderID:    req.OrderID,
		CustomerID: req.CustomerID,
		ChefID:     req.ChefID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return p.client.ProduceSync(ctx, record).FirstErr()
}

// Close flushes buffered records and closes client
func (p *Producer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		logger.Log.Error("failed to flush events", zap.Error(err))
	}
	p.client.Close()
}

func (p *Producer) record(event Event) (*kgo.Record, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.OrderID.String()),
		Value: data,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "version", Value: []byte(eventVersion)},
		},
		Timestamp: event.OccurredAt,
	}, nil
}

// LogPublisher writes events to the log instead of a broker
type LogPublisher struct{}

// Publish logs event
func (LogPublisher) Publish(_ context.Context, event Event) error {
	logger.Log.Info("event", zap.String("type", event.Type), zap.String("order", event.OrderID.String()))
	return nil
}

// CreateChannel logs chat channel request
func (LogPublisher) CreateChannel(_ context.Context, req ChannelRequest) error {
	logger.Log.Info("chat channel requested",
		zap.String("order", req.OrderID.String()),
		zap.Uint64("customer", req.CustomerID),
		zap.Uint64("chef", req.ChefID))
	return nil
}
