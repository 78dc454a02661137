package source

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mahaj/chat-client/pkg/model"
)

// KafkaSource tails the chat-messages topic and routes the signed-in
// user's frames into the sink. It sees the full firehose, so frames for
// other conversations are filtered out before dispatch.
type KafkaSource struct {
	reader *kafka.Reader
	sink   Sink
	self   string
	logger *slog.Logger
}

func NewKafkaSource(brokers []string, topic, groupID, self string, sink Sink, logger *slog.Logger) *KafkaSource {
	if logger == nil {
		logger = slog.Default()
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
		MinBytes:    10e3, // 10KB
		MaxBytes:    10e6, // 10MB
	})
	return &KafkaSource{reader: r, sink: sink, self: self, logger: logger}
}

// Run consumes until ctx is cancelled. Read errors are retried with a
// short pause; undecodable payloads are logged and skipped.
func (s *KafkaSource) Run(ctx context.Context) error {
	for {
		m, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("kafka read failed, retrying", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(1 * time.Second):
			}
			continue
		}

		var msg model.Message
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			s.logger.Warn("skipping undecodable frame", "error", err, "offset", m.Offset)
			continue
		}

		if !deliverable(s.self, msg) {
			continue
		}
		s.sink.AppendIncoming(msg)
	}
}

func (s *KafkaSource) Close() error {
	return s.reader.Close()
}
