package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/resdesk/internal/logger"
)

// Redis receives events from Pub/Sub channels named after the event. The
// go-redis PubSub reconnects and resubscribes on its own; Run only paces
// the retries.
type Redis struct {
	registry

	client *redis.Client
	addr   string
	retry  backoff

	mu     sync.Mutex
	pubsub *redis.PubSub
	cancel context.CancelFunc
	closed bool
}

func NewRedis(rawURL string, opts ...Option) (*Redis, error) {
	ro, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return &Redis{
		client: redis.NewClient(ro),
		addr:   ro.Addr,
		retry:  newBackoff(buildOptions(opts)),
	}, nil
}

// On also subscribes to the channel when Run is already receiving
func (r *Redis) On(event string, h Handler) func() {
	off := r.registry.On(event, h)

	r.mu.Lock()
	ps := r.pubsub
	r.mu.Unlock()
	if ps != nil {
		if err := ps.Subscribe(context.Background(), event); err != nil {
			logger.Warn("Failed to subscribe to redis channel", "channel", event, "error", err)
		}
	}
	return off
}

func (r *Redis) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	ps := r.client.Subscribe(ctx, r.events()...)
	r.pubsub = ps
	r.cancel = cancel
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.pubsub = nil
		r.mu.Unlock()
		ps.Close()
		r.setConnected(false)
	}()

	go func() {
		<-ctx.Done()
		ps.Close()
	}()

	if err := ps.Ping(ctx); err != nil {
		logger.Warn("Redis real-time channel unreachable", "addr", r.addr, "error", err)
	}

	for {
		msg, err := ps.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.setConnected(false)
			logger.Warn("Redis real-time channel disconnected", "addr", r.addr, "error", err)
			if r.retry.wait(ctx) != nil {
				return nil
			}
			continue
		}

		r.retry.reset()
		switch m := msg.(type) {
		case *redis.Subscription, *redis.Pong:
			if !r.Connected() {
				logger.Info("Redis real-time channel connected", "addr", r.addr)
			}
			r.setConnected(true)
		case *redis.Message:
			r.setConnected(true)
			r.dispatch(m.Channel, []byte(m.Payload))
		}
	}
}

func (r *Redis) Close() error {
	r.mu.Lock()
	r.closed = true
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	return r.client.Close()
}
