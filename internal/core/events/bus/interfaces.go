package bus

import "time"

// EventBus is an in-process pub/sub bus.
//
// Handlers subscribe by Event.Type() within a topic; the default topic is "".
// Publish delivers synchronously in the caller goroutine, in subscription
// order, and joins handler errors. Filters run before delivery and drop the
// event silently when any of them rejects it. All methods are safe for
// concurrent use.
type EventBus interface {
	Publish(event Event) error
	PublishToTopic(topic string, event Event) error
	PublishWithFilters(topic string, event Event, filters ...EventFilter) error
	PublishBatch(topic string, events ...Event) error

	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	Unsubscribe(Subscription) error

	// DropTopic cancels every subscription in a topic.
	DropTopic(topic string) int
	Topics() []TopicInfo
	Metrics() Metrics
}

// Event is an immutable message.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
	Metadata() map[string]any
}

type (
	EventHandler func(event Event) error
	EventFilter  func(event Event) bool
)

// Subscription is a registered handler. Cancel is idempotent.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	Cancel() error
}

// TopicInfo is a snapshot of one topic.
type TopicInfo struct {
	Name       string
	EventTypes int
	Subs       int
}

// Metrics are cumulative counters.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
}
