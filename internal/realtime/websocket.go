package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/julianstephens/resdesk/internal/logger"
)

// ErrClosed is returned by Run after Close
var ErrClosed = errors.New("transport closed")

// frame is one websocket text message
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WebSocket receives events as JSON frames over a websocket and reconnects
// with backoff whenever the connection drops
type WebSocket struct {
	registry

	url    string
	dialer *websocket.Dialer
	header http.Header
	retry  backoff

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

func NewWebSocket(url string, opts ...Option) *WebSocket {
	o := buildOptions(opts)
	dialer := *websocket.DefaultDialer
	dialer.Jar = o.jar
	return &WebSocket{
		url:    url,
		dialer: &dialer,
		header: o.header,
		retry:  newBackoff(o),
	}
}

func (w *WebSocket) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.cancel = cancel
	w.mu.Unlock()

	defer w.setConnected(false)

	for {
		conn, _, err := w.dialer.DialContext(ctx, w.url, w.header)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.setConnected(false)
			logger.Warn("Real-time channel unreachable", "url", w.url, "error", err)
			if w.retry.wait(ctx) != nil {
				return nil
			}
			continue
		}

		w.retry.reset()
		w.setConnected(true)
		logger.Info("Real-time channel connected", "url", w.url)

		err = w.read(ctx, conn)
		w.setConnected(false)
		if ctx.Err() != nil {
			return nil
		}
		logger.Warn("Real-time channel disconnected", "url", w.url, "error", err)
		if w.retry.wait(ctx) != nil {
			return nil
		}
	}
}

func (w *WebSocket) read(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var f frame
		if err := json.Unmarshal(msg, &f); err != nil || f.Event == "" {
			logger.Warn("Ignoring malformed real-time frame", "url", w.url)
			continue
		}
		w.dispatch(f.Event, f.Data)
	}
}

func (w *WebSocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	return nil
}
