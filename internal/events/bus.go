package events

import (
	"log"
	"sync"
	"time"
)

type Topic string

const (
	TopicAuthChanged  Topic = "auth.changed"
	TopicCartChanged  Topic = "cart.changed"
	TopicOrdersStatus Topic = "orders.status"
	TopicFormChanged  Topic = "form.changed"
)

type Event struct {
	Seq     uint64    `json:"seq"`
	Topic   Topic     `json:"topic"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload"`

	target int // non-zero: delivered to that subscription only
}

type Handler func(Event)

// Publisher is what state owners need to announce a change.
type Publisher interface {
	Publish(topic Topic, payload any)
}

// Broker also lets callers listen.
type Broker interface {
	Publisher
	Subscribe(h Handler) func()
	SubscribeWithCurrent(topic Topic, current func() any, h Handler) func()
}

// Discard drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Topic, any) {}

type subscription struct {
	id      int
	since   uint64 // last Seq published before the subscription
	handler Handler
}

// Bus delivers events to subscribers on a single dispatcher goroutine, in the
// order they were published. Publish never blocks, so handlers may publish.
type Bus struct {
	mu     sync.Mutex
	seq    uint64
	queue  []Event
	subs   []subscription
	nextID int
	closed bool

	wake      chan struct{}
	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewBus() *Bus {
	b := &Bus{
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
	}

	b.wg.Add(1)
	go b.dispatchLoop()

	return b
}

// Subscribe registers h for every event published after the call. The
// returned func removes it and is safe to call more than once.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	id := b.addLocked(h)
	b.mu.Unlock()

	return b.unsubscribeFunc(id)
}

// SubscribeWithCurrent registers h and queues one event on topic carrying
// current() for h alone. current is read under the bus lock, so h sees it
// before any event published afterwards and on the dispatcher goroutine like
// every other delivery.
func (b *Bus) SubscribeWithCurrent(topic Topic, current func() any, h Handler) func() {
	b.mu.Lock()
	id := b.addLocked(h)
	if !b.closed {
		b.enqueueLocked(Event{Topic: topic, Payload: current(), target: id})
	}
	b.mu.Unlock()

	b.signal()
	return b.unsubscribeFunc(id)
}

func (b *Bus) addLocked(h Handler) int {
	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, since: b.seq, handler: h})
	return b.nextID
}

func (b *Bus) unsubscribeFunc(id int) func() {
	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.enqueueLocked(Event{Topic: topic, Payload: payload})
	b.mu.Unlock()

	b.signal()
}

func (b *Bus) enqueueLocked(ev Event) {
	b.seq++
	ev.Seq = b.seq
	ev.At = time.Now().UTC()
	b.queue = append(b.queue, ev)
}

func (b *Bus) signal() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Close delivers what is already queued, then stops the dispatcher.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		close(b.stop)
		b.wg.Wait()
	})
}

func (b *Bus) dispatchLoop() {
	defer b.wg.Done()

	for {
		select {
		case <-b.wake:
			b.drain()
		case <-b.stop:
			b.drain()
			return
		}
	}
}

func (b *Bus) drain() {
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.mu.Unlock()
			return
		}
		ev := b.queue[0]
		b.queue[0] = Event{}
		b.queue = b.queue[1:]
		subs := make([]subscription, len(b.subs))
		copy(subs, b.subs)
		b.mu.Unlock()

		for _, s := range subs {
			if s.since >= ev.Seq || (ev.target != 0 && ev.target != s.id) {
				continue
			}
			deliver(s.handler, ev)
		}
	}
}

func deliver(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event handler panic on %s #%d: %v", ev.Topic, ev.Seq, r)
		}
	}()
	h(ev)
}
