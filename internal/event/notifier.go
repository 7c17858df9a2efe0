package event

import "sync"

// Publisher accepts events for delivery.
type Publisher interface {
	Publish(Event)
}

// Notifier publishes events to a Bus without blocking the caller. Events
// are queued without bound and delivered in publish order by a single
// goroutine that exists only while the queue is non-empty.
type Notifier struct {
	bus *Bus

	mu       sync.Mutex
	queue    []Event
	draining bool
	pending  sync.WaitGroup
}

// NewNotifier creates a Notifier over bus.
func NewNotifier(bus *Bus) *Notifier {
	return &Notifier{bus: bus}
}

// Bus returns the underlying bus, for subscribing.
func (n *Notifier) Bus() *Bus {
	return n.bus
}

// Publish queues e and returns immediately. Events with no subscribers at
// publish time are dropped.
func (n *Notifier) Publish(e Event) {
	if !n.bus.HasSubscribers(e.EventType()) {
		return
	}

	n.mu.Lock()
	n.pending.Add(1)
	n.queue = append(n.queue, e)
	if !n.draining {
		n.draining = true
		go n.drain()
	}
	n.mu.Unlock()
}

func (n *Notifier) drain() {
	for {
		n.mu.Lock()
		if len(n.queue) == 0 {
			n.draining = false
			n.mu.Unlock()
			return
		}
		e := n.queue[0]
		n.queue[0] = nil
		n.queue = n.queue[1:]
		n.mu.Unlock()

		n.bus.Publish(e)
		n.pending.Done()
	}
}

// Wait blocks until every event published so far has been delivered.
// Publishers must be quiescent: no Publish may run concurrently with Wait
// when the queue could be empty.
func (n *Notifier) Wait() {
	n.pending.Wait()
}
