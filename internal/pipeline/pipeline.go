package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/go-market-ledger.git/internal/market"
	"github.com/rs/zerolog"
)

var (
	// ErrQueueFull: antrian penuh, submit ditolak langsung tanpa blocking.
	ErrQueueFull = errors.New("order queue full")
	// ErrSubmitTimeout: job belum selesai dalam batas waktu submit.
	ErrSubmitTimeout = errors.New("order submission timed out")
	// ErrClosed: queue sudah ditutup.
	ErrClosed = errors.New("order queue closed")
)

// Fulfiller runs one fulfillment attempt atomically.
type Fulfiller interface {
	FulfillOrder(ctx context.Context, buyerID string, items []market.CartLine) (market.Receipt, error)
}

type result struct {
	receipt market.Receipt
	err     error
}

type job struct {
	buyerID string
	items   []market.CartLine
	done    chan result // buffered 1, worker tidak pernah block di sini
}

// Queue serializes order fulfillment: one worker goroutine drains a FIFO
// channel, so at most one fulfillment transaction is in flight per instance.
// Submit blocks the caller until its job resolves (bounded by SubmitTimeout).
type Queue struct {
	fulfiller     Fulfiller
	jobs          chan job
	closeCh       chan struct{}
	submitTimeout time.Duration
	log           zerolog.Logger
}

func New(f Fulfiller, buf int, submitTimeout time.Duration, log zerolog.Logger) *Queue {
	if buf <= 0 {
		buf = 64
	}
	if submitTimeout <= 0 {
		submitTimeout = 30 * time.Second
	}
	return &Queue{
		fulfiller:     f,
		jobs:          make(chan job, buf),
		closeCh:       make(chan struct{}),
		submitTimeout: submitTimeout,
		log:           log,
	}
}

// Start spawns the single worker. Jobs are processed strictly in submission
// order; a failed job is terminal (no retry).
func (q *Queue) Start(ctx context.Context) {
	go func() {
		defer close(q.closeCh)
		for {
			select {
			case <-ctx.Done():
				// resolve sisa antrian supaya submitter tidak menggantung
				for {
					select {
					case j := <-q.jobs:
						j.done <- result{err: ErrClosed}
					default:
						return
					}
				}
			case j := <-q.jobs:
				select {
				case <-ctx.Done():
					j.done <- result{err: ErrClosed}
				default:
					q.process(ctx, j)
				}
			}
		}
	}()
}

func (q *Queue) process(ctx context.Context, j job) {
	started := time.Now()
	receipt, err := q.fulfiller.FulfillOrder(ctx, j.buyerID, j.items)
	if err != nil {
		q.log.Warn().Err(err).Str("buyer_id", j.buyerID).
			Dur("took", time.Since(started)).Msg("order fulfillment failed")
	} else {
		q.log.Info().Str("invoice_id", receipt.InvoiceID).Str("buyer_id", j.buyerID).
			Dur("took", time.Since(started)).Msg("order fulfilled")
	}
	j.done <- result{receipt: receipt, err: err}
}

// Submit enqueues a fulfillment attempt and waits for its outcome. A full
// queue rejects immediately; a job that does not resolve within the submit
// timeout returns ErrSubmitTimeout (the job itself still runs to completion).
func (q *Queue) Submit(ctx context.Context, buyerID string, items []market.CartLine) (market.Receipt, error) {
	j := job{buyerID: buyerID, items: items, done: make(chan result, 1)}

	select {
	case q.jobs <- j:
	case <-q.closeCh:
		return market.Receipt{}, ErrClosed
	default:
		return market.Receipt{}, ErrQueueFull
	}

	timer := time.NewTimer(q.submitTimeout)
	defer timer.Stop()
	select {
	case r := <-j.done:
		return r.receipt, r.err
	case <-timer.C:
		return market.Receipt{}, ErrSubmitTimeout
	case <-ctx.Done():
		return market.Receipt{}, ctx.Err()
	case <-q.closeCh:
		// worker keburu exit setelah job masuk antrian; ambil hasil kalau
		// sempat diproses, selain itu job tidak akan pernah jalan
		select {
		case r := <-j.done:
			return r.receipt, r.err
		default:
			return market.Receipt{}, ErrClosed
		}
	}
}

// WaitClosed blocks until the worker goroutine has exited.
func (q *Queue) WaitClosed() { <-q.closeCh }
