package realtime

import (
	"fmt"
	"sync"

	"github.com/julianstephens/resdesk/internal/adapter"
	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/logger"
	"github.com/julianstephens/resdesk/internal/toast"
)

// Publisher is the part of the event bus the notifier needs
type Publisher interface {
	Publish(topic string, payload any)
}

// Notifier turns new-reservation events into a reservationCreated bus
// message plus a toast. It never closes the transport it listens on.
type Notifier struct {
	transport Transport
	bus       Publisher
	toaster   toast.Toaster

	mu  sync.Mutex
	off func()
}

func NewNotifier(transport Transport, bus Publisher, toaster toast.Toaster) *Notifier {
	return &Notifier{transport: transport, bus: bus, toaster: toaster}
}

// Start registers the event handler. Calling it twice is a no-op.
func (n *Notifier) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.off != nil {
		return
	}
	n.off = n.transport.On(constants.EventNewReservation, n.handle)
}

// Stop removes the event handler
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.off == nil {
		return
	}
	n.off()
	n.off = nil
}

func (n *Notifier) Running() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.off != nil
}

func (n *Notifier) handle(data []byte) {
	rec, err := adapter.ParseRecord(data)
	if err != nil {
		logger.Warn("Malformed new-reservation payload", "error", err)
		rec = adapter.Record{}
	}

	n.bus.Publish(constants.TopicReservationCreated, rec)

	if n.toaster == nil {
		return
	}
	order := orderNumber(rec)
	t := toast.New(constants.NotificationTitle, "Reservation #"+order)
	t.ReservationID = rec.ID()
	t.OrderNumber = order
	if err := n.toaster.Show(t); err != nil {
		logger.Warn("Failed to show notification", "order", order, "error", err)
	}
}

func orderNumber(rec adapter.Record) string {
	v, ok := rec["orderNumber"]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// BridgeConnectivity republishes transport connectivity changes on the bus
func BridgeConnectivity(t Transport, bus Publisher) (off func()) {
	return t.OnConnectivity(func(connected bool) {
		bus.Publish(constants.TopicConnectivityChanged, connected)
	})
}
