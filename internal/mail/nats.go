package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/erazemk/findmate/internal/metrics"
)

// NATS stream layout for the mail outbox.
const (
	StreamName  = "FINDMATE_MAIL"
	Subject     = "findmate.mail.outbound"
	DurableName = "findmate-mailer"
)

// NATSOutbox is an Outbox backed by a JetStream stream. Submit publishes;
// Start attaches a durable consumer that delivers through a Sender, so
// messages survive a restart between submission and delivery.
type NATSOutbox struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	sender  Sender
	log     *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	sub     *nats.Subscription
}

// NewNATSOutbox connects to url and ensures the mail stream exists.
func NewNATSOutbox(url string, sender Sender, log *zap.Logger, m *metrics.Metrics, opts ...nats.Option) (*NATSOutbox, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("opening jetstream: %w", err)
	}

	if _, err := js.StreamInfo(StreamName); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			nc.Close()
			return nil, fmt.Errorf("looking up mail stream: %w", err)
		}
		_, err = js.AddStream(&nats.StreamConfig{
			Name:      StreamName,
			Subjects:  []string{Subject},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    24 * time.Hour,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("creating mail stream: %w", err)
		}
	}

	return &NATSOutbox{
		conn:    nc,
		js:      js,
		sender:  sender,
		log:     log,
		metrics: m,
		timeout: DefaultSendTimeout,
	}, nil
}

// Submit implements Outbox.
func (o *NATSOutbox) Submit(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding mail: %w", err)
	}
	if _, err := o.js.Publish(Subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publishing mail: %w", err)
	}
	o.metrics.Mail("queued")
	return nil
}

// Start subscribes the durable delivery consumer. Failed deliveries are
// negatively acknowledged and redelivered by the server.
func (o *NATSOutbox) Start() error {
	sub, err := o.js.Subscribe(Subject, func(m *nats.Msg) {
		if err := o.handle(m.Data); err != nil {
			_ = m.Nak()
			return
		}
		_ = m.Ack()
	}, nats.Durable(DurableName), nats.ManualAck(), nats.AckExplicit(), nats.MaxDeliver(5))
	if err != nil {
		return fmt.Errorf("subscribing mail consumer: %w", err)
	}
	o.sub = sub
	return nil
}

func (o *NATSOutbox) handle(data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		// A malformed payload will never succeed; drop it.
		o.log.Error("dropping malformed mail payload", zap.Error(err))
		return nil
	}
	return deliver(o.sender, msg, o.timeout, o.log, o.metrics)
}

// Close drains the consumer and the connection.
func (o *NATSOutbox) Close() {
	if o.sub != nil {
		_ = o.sub.Drain()
	}
	if err := o.conn.Drain(); err != nil {
		o.conn.Close()
	}
}
