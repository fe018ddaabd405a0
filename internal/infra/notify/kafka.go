package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"eventmart/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// *kafka.Writer の使う部分だけ
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// 通知イベントを Kafka に流す。配送（メール・プッシュ）は購読側
type KafkaNotifier struct {
	writer  messageWriter
	timeout time.Duration
	log     zerolog.Logger
}

func NewKafkaNotifier(brokers []string, topic string, log zerolog.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:  kafka.TCP(brokers...),
			Topic: topic,
			//同じ注文のイベントは同じパーティションへ
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		timeout: 10 * time.Second,
		log:     log,
	}
}

// キーは注文番号（同じ注文のイベントの順序を保つ）
func newMessage(n usecase.Notification) (kafka.Message, error) {
	value, err := json.Marshal(n)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(n.OrderNumber),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(n.Type)},
		},
	}, nil
}

func (k *KafkaNotifier) Notify(ctx context.Context, n usecase.Notification) error {
	msg, err := newMessage(n)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", n.Type, err)
	}

	k.log.Debug().
		Str("notification_id", n.ID).
		Str("type", string(n.Type)).
		Int64("order_id", n.OrderID).
		Msg("notification published")
	return nil
}

func (k *KafkaNotifier) Close() error {
	if k.writer != nil {
		return k.writer.Close()
	}
	return nil
}
