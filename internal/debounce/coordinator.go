// Package debounce coalesces bursts of bus events into a single trailing
// refetch per consumer.
package debounce

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/julianstephens/resdesk/internal/eventbus"
	"github.com/julianstephens/resdesk/internal/logger"
)

// State is the coordinator lifecycle state
type State int

const (
	Idle State = iota
	Scheduled
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Subscriber is the slice of the event bus a coordinator needs
type Subscriber interface {
	Subscribe(topic string, handler eventbus.Handler) (unsubscribe func())
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithClock replaces the real clock
func WithClock(clock Clock) Option {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

// WithName tags the coordinator's log lines
func WithName(name string) Option {
	return func(c *Coordinator) {
		c.name = name
	}
}

// Coordinator runs refetch once, delay after the last event on its topic.
type Coordinator struct {
	mu          sync.Mutex
	state       State
	deadline    time.Time
	timer       Timer
	generation  uint64
	delay       time.Duration
	refetch     func()
	clock       Clock
	name        string
	unsubscribe func()
	log         *log.Logger
}

// NewCoordinator subscribes to topic on bus and returns an idle coordinator.
// refetch runs with the coordinator's lock held and must not publish on
// topic itself.
func NewCoordinator(bus Subscriber, topic string, delay time.Duration, refetch func(), opts ...Option) *Coordinator {
	c := &Coordinator{
		state:   Idle,
		delay:   delay,
		refetch: refetch,
		clock:   RealClock,
		name:    topic,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.Component("debounce").With("name", c.name)
	c.unsubscribe = bus.Subscribe(topic, func(any) { c.Trigger() })
	return c
}

// Trigger (re)schedules the refetch delay from now. It is what every bus
// event calls; views may also call it directly.
func (c *Coordinator) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Stopped {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}

	c.generation++
	gen := c.generation
	c.deadline = c.clock.Now().Add(c.delay)
	c.timer = c.clock.AfterFunc(c.delay, func() { c.fire(gen) })
	c.state = Scheduled
}

func (c *Coordinator) fire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A stale timer that lost the race with Trigger or Stop
	if c.state != Scheduled || gen != c.generation {
		return
	}

	c.state = Idle
	c.timer = nil
	c.deadline = time.Time{}
	c.log.Debug("Refetching")
	if c.refetch != nil {
		c.refetch()
	}
}

// Stop cancels any pending refetch and unsubscribes. Once Stop returns no
// refetch will run. Stop is idempotent.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Stopped {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.state = Stopped
	c.deadline = time.Time{}
	c.unsubscribe()
	c.log.Debug("Stopped")
}

// State returns the current lifecycle state
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Deadline returns when the pending refetch is due. ok is false unless
// the coordinator is Scheduled.
func (c *Coordinator) Deadline() (deadline time.Time, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deadline, c.state == Scheduled
}
