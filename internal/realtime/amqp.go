package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/logger"
)

// AMQP receives events from a topic exchange where the routing key is the
// event name. Each run declares its own exclusive, auto-deleted queue.
type AMQP struct {
	registry

	url      string
	exchange string
	retry    backoff

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

// NewAMQP accepts an optional "exchange" query parameter, defaulting to
// resdesk.events
func NewAMQP(rawURL string, opts ...Option) (*AMQP, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid amqp URL: %w", err)
	}
	q := u.Query()
	exchange := q.Get("exchange")
	if exchange == "" {
		exchange = constants.DefaultExchange
	}
	q.Del("exchange")
	u.RawQuery = q.Encode()

	if _, err := amqp.ParseURI(u.String()); err != nil {
		return nil, fmt.Errorf("invalid amqp URL: %w", err)
	}

	return &AMQP{
		url:      u.String(),
		exchange: exchange,
		retry:    newBackoff(buildOptions(opts)),
	}, nil
}

// Exchange returns the topic exchange events are read from
func (a *AMQP) Exchange() string {
	return a.exchange
}

func (a *AMQP) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.cancel = cancel
	a.mu.Unlock()

	defer a.setConnected(false)

	for {
		conn, err := amqp.Dial(a.url)
		if err != nil {
			a.setConnected(false)
			logger.Warn("AMQP broker unreachable", "exchange", a.exchange, "error", err)
			if a.retry.wait(ctx) != nil {
				return nil
			}
			continue
		}

		a.retry.reset()
		err = a.consume(ctx, conn)
		a.setConnected(false)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		logger.Warn("AMQP consume loop ended, reconnecting", "exchange", a.exchange, "error", err)
		if a.retry.wait(ctx) != nil {
			return nil
		}
	}
}

func (a *AMQP) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(a.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, "#", a.exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	a.setConnected(true)
	logger.Info("AMQP real-time channel connected", "exchange", a.exchange, "queue", q.Name)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			if amqpErr != nil {
				return amqpErr
			}
			return errors.New("connection closed")
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			a.dispatch(d.RoutingKey, d.Body)
		}
	}
}

func (a *AMQP) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.cancel != nil {
		a.cancel()
	}
	return nil
}
