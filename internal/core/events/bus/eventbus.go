package bus

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNilHandler = errors.New("nil event handler")

type simpleEvent struct {
	typeStr string
	source  string
	ts      time.Time
	data    any
	meta    map[string]any
}

func (e simpleEvent) Type() string             { return e.typeStr }
func (e simpleEvent) Source() string           { return e.source }
func (e simpleEvent) Timestamp() time.Time     { return e.ts }
func (e simpleEvent) Data() any                { return e.data }
func (e simpleEvent) Metadata() map[string]any { return e.meta }

// NewEvent creates a plain Event.
func NewEvent(typ, src string, data any, metadata map[string]any) Event {
	return simpleEvent{typeStr: typ, source: src, ts: time.Now(), data: data, meta: metadata}
}

type subscription struct {
	id        string
	seq       uint64
	topic     string
	eventType string
	handler   EventHandler
	bus       *inMemoryBus

	mu     sync.Mutex
	active bool
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) Topic() string     { return s.topic }
func (s *subscription) EventType() string { return s.eventType }

func (s *subscription) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *subscription) Cancel() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	s.mu.Unlock()
	s.bus.remove(s)
	return nil
}

type inMemoryBus struct {
	mu sync.RWMutex
	// topic -> eventType -> subID -> subscription
	handlers map[string]map[string]map[string]*subscription
	seq      uint64
	metrics  Metrics
}

// New creates an in-memory EventBus.
func New() EventBus {
	return &inMemoryBus{
		handlers: make(map[string]map[string]map[string]*subscription),
	}
}

func (b *inMemoryBus) Publish(event Event) error {
	return b.deliver("", event)
}

func (b *inMemoryBus) PublishToTopic(topic string, event Event) error {
	return b.deliver(topic, event)
}

func (b *inMemoryBus) PublishWithFilters(topic string, event Event, filters ...EventFilter) error {
	for _, f := range filters {
		if !f(event) {
			b.mu.Lock()
			b.metrics.DroppedByFilters++
			b.mu.Unlock()
			return nil
		}
	}
	return b.deliver(topic, event)
}

func (b *inMemoryBus) PublishBatch(topic string, events ...Event) error {
	var all error
	for _, e := range events {
		if err := b.deliver(topic, e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	return b.SubscribeTopic("", eventType, handler)
}

func (b *inMemoryBus) SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[string]map[string]*subscription)
	}
	if b.handlers[topic][eventType] == nil {
		b.handlers[topic][eventType] = make(map[string]*subscription)
	}
	b.seq++
	s := &subscription{
		id:        uuid.NewString(),
		seq:       b.seq,
		topic:     topic,
		eventType: eventType,
		handler:   handler,
		bus:       b,
		active:    true,
	}
	b.handlers[topic][eventType][s.id] = s
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) DropTopic(topic string) int {
	b.mu.Lock()
	types := b.handlers[topic]
	delete(b.handlers, topic)
	b.mu.Unlock()

	n := 0
	for _, subs := range types {
		for _, s := range subs {
			s.mu.Lock()
			s.active = false
			s.mu.Unlock()
			n++
		}
	}
	return n
}

func (b *inMemoryBus) Topics() []TopicInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]TopicInfo, 0, len(b.handlers))
	for name, types := range b.handlers {
		info := TopicInfo{Name: name, EventTypes: len(types)}
		for _, m := range types {
			info.Subs += len(m)
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (b *inMemoryBus) Metrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *inMemoryBus) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	types, ok := b.handlers[s.topic]
	if !ok {
		return
	}
	if subs, ok := types[s.eventType]; ok {
		delete(subs, s.id)
		if len(subs) == 0 {
			delete(types, s.eventType)
		}
	}
	if len(types) == 0 {
		delete(b.handlers, s.topic)
	}
}

func (b *inMemoryBus) deliver(topic string, event Event) error {
	if event == nil {
		return nil
	}
	etype := event.Type()

	b.mu.RLock()
	var subs []*subscription
	if m := b.handlers[topic][etype]; m != nil {
		subs = make([]*subscription, 0, len(m))
		for _, s := range m {
			subs = append(subs, s)
		}
	}
	b.mu.RUnlock()

	sort.Slice(subs, func(i, j int) bool { return subs[i].seq < subs[j].seq })

	var all error
	delivered := 0
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		delivered++
		if err := s.handler(event); err != nil {
			all = errors.Join(all, fmt.Errorf("%s/%s: %w", topic, etype, err))
		}
	}

	b.mu.Lock()
	b.metrics.Published++
	b.metrics.DeliveredHandlers += uint64(delivered)
	if all != nil {
		b.metrics.Errors++
	}
	b.mu.Unlock()

	return all
}
