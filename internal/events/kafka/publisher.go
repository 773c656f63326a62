package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fastprodman/wagerledger/internal/events"
	"github.com/segmentio/kafka-go"
)

var _ events.Publisher = (*Publisher)(nil)

// Publisher writes events to a kafka topic keyed by round.
type Publisher struct {
	w *kafka.Writer
}

// NewWriter builds the writer the publisher sends through. Messages of one
// round share a key and so a partition, which keeps them ordered.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
	}
}

func New(w *kafka.Writer) *Publisher {
	return &Publisher{w: w}
}

func (p *Publisher) Name() string { return "kafka" }

func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	msg, err := message(e)
	if err != nil {
		return err
	}

	err = p.w.WriteMessages(ctx, msg)
	if err != nil {
		return fmt.Errorf("kafka write %s: %w", e.Type, err)
	}

	return nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}

func message(e events.Event) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(e.RoundID.String()),
		Value: value,
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
			{Key: "game_type", Value: []byte(e.GameType)},
		},
	}, nil
}
