package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// Kafka publishes events as JSON messages keyed by user id, so the trades of
// one account stay ordered inside a partition.
type Kafka struct {
	writer *kafka.Writer
}

// NewKafka creates a publisher writing to topic on brokers.
func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 200 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (k *Kafka) Publish(ctx context.Context, event TradeExecuted) error {
	msg, err := message(event)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, msg)
}

func message(event TradeExecuted) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: data,
		Time:  event.OccurredAt,
	}, nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

var _ Publisher = (*Kafka)(nil)
