package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkax "github.com/ariefcatur/go-market-ledger.git/internal/kafka"
	"github.com/ariefcatur/go-market-ledger.git/internal/market"
	"github.com/ariefcatur/go-market-ledger.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// Activity is one entry of a user's recent-activity feed.
type Activity struct {
	Type        string    `json:"type"` // OrderFulfilled | OrderRejected | PaymentApplied
	InvoiceID   string    `json:"invoice_id,omitempty"`
	Code        string    `json:"code,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Kind        string    `json:"kind,omitempty"` // alasan reject
	At          time.Time `json:"at"`
}

// Service turns order/payment events into capped per-user feeds in Redis.
type Service struct {
	Redis       *redis.Client
	ServiceName string
	FeedLen     int64
	Log         zerolog.Logger
}

// HandleEvent: dipasang sebagai handler consumer.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// pesan rusak tidak akan pernah sukses, commit saja
		s.Log.Warn().Err(err).Str("topic", m.Topic).Msg("skipping malformed event")
		return nil
	}

	switch env.EventType {
	case market.EventOrderFulfilled, market.EventOrderRejected, market.EventPaymentApplied:
	default:
		return nil // ignore
	}

	// dedup via Redis (pakai event_id)
	dkey := s.dedupKey(env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case market.EventOrderFulfilled:
		p, err := kafkax.UnwrapPayload[market.OrderFulfilledPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.push(ctx, p.BuyerID, Activity{
			Type: env.EventType, InvoiceID: p.InvoiceID, Code: p.Code,
			AmountCents: p.TotalCents, At: env.OccurredAt,
		})
	case market.EventOrderRejected:
		p, err := kafkax.UnwrapPayload[market.OrderRejectedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.push(ctx, p.BuyerID, Activity{
			Type: env.EventType, Kind: p.Kind, At: env.OccurredAt,
		})
	case market.EventPaymentApplied:
		p, err := kafkax.UnwrapPayload[market.PaymentAppliedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.push(ctx, p.PayerID, Activity{
			Type: env.EventType, InvoiceID: p.InvoiceID,
			AmountCents: p.AmountCents, At: env.OccurredAt,
		})
	}
	return nil
}

// dedupKey scopes processed event ids to this consumer's service name, so
// two notifier deployments with different names keep independent dedup sets.
func (s *Service) dedupKey(eventID string) string {
	name := s.ServiceName
	if name == "" {
		name = "notifier"
	}
	return fmt.Sprintf(redisx.KeyDedup, name, eventID)
}

func (s *Service) push(ctx context.Context, userID string, a Activity) error {
	key := fmt.Sprintf(redisx.KeyActivity, userID)
	pipe := s.Redis.TxPipeline()
	pipe.LPush(ctx, key, kafkax.MustMarshal(a))
	pipe.LTrim(ctx, key, 0, s.FeedLen-1)
	pipe.Expire(ctx, key, redisx.TTLActivity)
	_, err := pipe.Exec(ctx)
	return err
}

// Feed reads the newest entries of a user's feed.
func Feed(ctx context.Context, rdb *redis.Client, userID string, n int64) ([]Activity, error) {
	key := fmt.Sprintf(redisx.KeyActivity, userID)
	raw, err := rdb.LRange(ctx, key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Activity, 0, len(raw))
	for _, r := range raw {
		var a Activity
		if err := json.Unmarshal([]byte(r), &a); err != nil {
			continue // entry rusak dilewati
		}
		out = append(out, a)
	}
	return out, nil
}
