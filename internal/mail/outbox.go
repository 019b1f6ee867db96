package mail

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/findmate/internal/metrics"
)

// Outbox accepts messages for asynchronous delivery. Submit only reports
// whether the message was accepted, not whether it was delivered.
type Outbox interface {
	Submit(ctx context.Context, msg Message) error
}

var (
	// ErrQueueFull is returned when the queue has no free slot.
	ErrQueueFull = errors.New("mail queue is full")
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("mail queue is closed")
)

// DefaultSendTimeout bounds a single delivery attempt.
const DefaultSendTimeout = 30 * time.Second

// Queue is an in-process Outbox: a bounded channel drained by one worker
// goroutine.
type Queue struct {
	sender  Sender
	log     *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	ch     chan Message
	done   chan struct{}
}

// NewQueue starts a queue with room for size pending messages.
func NewQueue(sender Sender, size int, log *zap.Logger, m *metrics.Metrics) *Queue {
	q := &Queue{
		sender:  sender,
		log:     log,
		metrics: m,
		timeout: DefaultSendTimeout,
		ch:      make(chan Message, size),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Submit implements Outbox. It never blocks on delivery.
func (q *Queue) Submit(ctx context.Context, msg Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.ch <- msg:
		q.metrics.Mail("queued")
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting messages, delivers what is already queued and waits
// for the worker to exit or ctx to end.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) run() {
	defer close(q.done)
	for msg := range q.ch {
		deliver(q.sender, msg, q.timeout, q.log, q.metrics)
	}
}

func deliver(sender Sender, msg Message, timeout time.Duration, log *zap.Logger, m *metrics.Metrics) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := sender.Send(ctx, msg); err != nil {
		m.Mail("failed")
		log.Error("mail delivery failed", zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.Error(err))
		return err
	}
	m.Mail("sent")
	log.Info("mail sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
