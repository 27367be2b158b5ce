package redisx

import "time"

const (
	// Idempotency submit order: idem:order:submit:{external_id} -> invoice_id
	KeyIdemSubmit = "idem:order:submit:%s"

	// Dedup event processing di notifier: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Activity feed per user: list activity:{user_id}, capped
	KeyActivity = "activity:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
	TTLActivity    = 7 * 24 * time.Hour
)
