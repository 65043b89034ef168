// Package realtime receives server-pushed events and turns them into bus
// messages and toasts.
package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/logger"
)

// Handler receives the raw data of one event
type Handler func(data []byte)

// ConnectivityHandler is told when a transport connects or drops
type ConnectivityHandler func(connected bool)

// Transport is one shared real-time connection. It is owned by the
// top-level command, which alone calls Run and Close.
type Transport interface {
	On(event string, h Handler) (off func())
	OnConnectivity(h ConnectivityHandler) (off func())
	Connected() bool
	Run(ctx context.Context) error
	Close() error
}

// Dial picks a transport from the URL scheme
func Dial(rawURL string, opts ...Option) (Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid socket URL %q: %w", rawURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "ws", "wss":
		return NewWebSocket(rawURL, opts...), nil
	case "redis", "rediss":
		return NewRedis(rawURL, opts...)
	case "amqp", "amqps":
		return NewAMQP(rawURL, opts...)
	default:
		return nil, fmt.Errorf("unsupported socket URL scheme %q (expected ws, wss, redis, rediss, amqp or amqps)", u.Scheme)
	}
}

type registration struct {
	id int
	h  Handler
}

type connRegistration struct {
	id int
	h  ConnectivityHandler
}

// registry holds the handlers and connectivity state shared by every
// transport implementation
type registry struct {
	mu        sync.Mutex
	nextID    int
	handlers  map[string][]registration
	listeners []connRegistration
	connected bool
}

func (r *registry) On(event string, h Handler) func() {
	if h == nil {
		return func() {}
	}
	r.mu.Lock()
	if r.handlers == nil {
		r.handlers = make(map[string][]registration)
	}
	r.nextID++
	id := r.nextID
	r.handlers[event] = append(r.handlers[event], registration{id: id, h: h})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			regs := r.handlers[event]
			kept := make([]registration, 0, len(regs))
			for _, reg := range regs {
				if reg.id != id {
					kept = append(kept, reg)
				}
			}
			if len(kept) == 0 {
				delete(r.handlers, event)
			} else {
				r.handlers[event] = kept
			}
		})
	}
}

func (r *registry) OnConnectivity(h ConnectivityHandler) func() {
	if h == nil {
		return func() {}
	}
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.listeners = append(r.listeners, connRegistration{id: id, h: h})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			kept := make([]connRegistration, 0, len(r.listeners))
			for _, l := range r.listeners {
				if l.id != id {
					kept = append(kept, l)
				}
			}
			r.listeners = kept
		})
	}
}

func (r *registry) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

func (r *registry) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]string, 0, len(r.handlers))
	for event := range r.handlers {
		events = append(events, event)
	}
	return events
}

// dispatch calls the handlers registered for event, outside the lock
func (r *registry) dispatch(event string, data []byte) {
	r.mu.Lock()
	regs := append([]registration(nil), r.handlers[event]...)
	r.mu.Unlock()

	if len(regs) == 0 {
		logger.Debug("Ignoring real-time event without handlers", "event", event)
		return
	}
	for _, reg := range regs {
		reg.h(data)
	}
}

// setConnected notifies listeners only when the state actually changes
func (r *registry) setConnected(connected bool) {
	r.mu.Lock()
	if r.connected == connected {
		r.mu.Unlock()
		return
	}
	r.connected = connected
	listeners := append([]connRegistration(nil), r.listeners...)
	r.mu.Unlock()

	for _, l := range listeners {
		l.h(connected)
	}
}

// backoff doubles from start up to ceiling between reconnect attempts
type backoff struct {
	start   time.Duration
	ceiling time.Duration
	next    time.Duration
}

func newBackoff(o options) backoff {
	return backoff{start: o.retryStart, ceiling: o.retryCeiling}
}

func (b *backoff) reset() {
	b.next = b.start
}

func (b *backoff) wait(ctx context.Context) error {
	if b.next <= 0 {
		b.reset()
	}
	d := b.next
	b.next *= 2
	if b.next > b.ceiling {
		b.next = b.ceiling
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type options struct {
	jar          http.CookieJar
	header       http.Header
	retryStart   time.Duration
	retryCeiling time.Duration
}

// Option configures a transport
type Option func(*options)

// WithCookieJar sends the session cookies with the websocket handshake
func WithCookieJar(jar http.CookieJar) Option {
	return func(o *options) { o.jar = jar }
}

// WithHeader adds handshake headers (websocket only)
func WithHeader(h http.Header) Option {
	return func(o *options) { o.header = h }
}

// WithRetry overrides the reconnect backoff bounds
func WithRetry(start, ceiling time.Duration) Option {
	return func(o *options) {
		o.retryStart = start
		o.retryCeiling = ceiling
	}
}

func buildOptions(opts []Option) options {
	o := options{
		retryStart:   constants.ConnectivityBackoffStart,
		retryCeiling: constants.ConnectivityBackoffCeiling,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.retryCeiling < o.retryStart {
		o.retryCeiling = o.retryStart
	}
	return o
}
