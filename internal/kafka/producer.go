package kafka

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Producer publishes fire-and-forget through a buffered inbox so HTTP
// handlers never block on the broker.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	log     zerolog.Logger
}

func NewProducer(brokers []string, topic string, buf int, log zerolog.Logger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		log:     log.With().Str("topic", topic).Logger(),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				// flush sisa pesan tanpa menutup inbox (Close() yang menutup)
				for {
					select {
					case m, ok := <-p.inbox:
						if !ok {
							_ = p.w.Close()
							close(p.closeCh)
							return
						}
						p.write(m)
					default:
						_ = p.w.Close()
						close(p.closeCh)
						return
					}
				}
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					close(p.closeCh)
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.log.Error().Err(err).Msg("kafka write failed, event dropped")
	}
}

func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	p.inbox <- kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
}

// Tutup inbox supaya goroutine nge-flush sisa pesan lalu exit rapi.
func (p *Producer) Close() { close(p.inbox) }

// Tunggu sampai goroutine selesai.
func (p *Producer) WaitClosed() { <-p.closeCh }
