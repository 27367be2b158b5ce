package kafka

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Handler harus return nil hanya jika proses sukses & boleh commit offset.
type Handler func(ctx context.Context, m kafka.Message) error

// Consumer reads one or more topics within a consumer group and fans messages
// out to a small worker pool. Offsets are committed per message on success.
type Consumer struct {
	r       *kafka.Reader
	workers int
	log     zerolog.Logger
}

func NewConsumer(brokers []string, group string, topics []string, workers int, log zerolog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, log: log.With().Str("group", group).Logger()}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 256)
	for i := 0; i < c.workers; i++ {
		go func() {
			for m := range jobs {
				if err := h(ctx, m); err != nil {
					c.log.Error().Err(err).Str("topic", m.Topic).Msg("handler failed, offset not committed")
					time.Sleep(200 * time.Millisecond) // backoff ringan
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil {
					c.log.Error().Err(err).Msg("commit failed")
				}
			}
		}()
	}

	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			close(jobs)
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			close(jobs)
			return nil
		}
	}
}
