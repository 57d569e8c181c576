// Package notify relays named animation events from a marker on one animation
// to the child animation listeners of the same owner.
package notify

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zeusync/locomotion/internal/core/events/bus"
	"github.com/zeusync/locomotion/internal/core/observability/log"
)

// EventType is the bus event type carrying a relayed name.
const EventType = "notify.post_event"

// DefaultDisplayName labels a PlayChildAnim marker with no event name.
const DefaultDisplayName = "PlayChildAnim"

var (
	ErrNilListener = errors.New("notify: nil listener")
	ErrNoOwner     = errors.New("notify: empty owner")
)

// Listener receives relayed events.
type Listener interface {
	OnPostEvent(name string) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(name string) error

func (f ListenerFunc) OnPostEvent(name string) error { return f(name) }

// Relay fans events out to the listeners attached to an owner. Each owner
// gets its own bus topic.
type Relay struct {
	bus bus.EventBus
	log log.Log
}

// NewRelay builds a relay over b, or over a private bus when b is nil.
func NewRelay(b bus.EventBus, l log.Log) *Relay {
	if b == nil {
		b = bus.New()
	}
	return &Relay{bus: b, log: log.OrNop(l).Named("notify")}
}

func topic(owner string) string { return "owner/" + owner }

// Attach registers l as a child listener of owner.
func (r *Relay) Attach(owner string, l Listener) (bus.Subscription, error) {
	if owner == "" {
		return nil, ErrNoOwner
	}
	if l == nil {
		return nil, ErrNilListener
	}
	sub, err := r.bus.SubscribeTopic(topic(owner), EventType, func(ev bus.Event) error {
		name, _ := ev.Data().(string)
		return l.OnPostEvent(name)
	})
	if err != nil {
		return nil, fmt.Errorf("attach %s: %w", owner, err)
	}
	return sub, nil
}

// Detach drops every listener of owner and returns how many there were.
func (r *Relay) Detach(owner string) int {
	return r.bus.DropTopic(topic(owner))
}

// Post delivers name to every listener of owner synchronously. An empty name
// is ignored. Listener errors are joined; delivery continues past them.
func (r *Relay) Post(owner, name string) error {
	if name == "" || owner == "" {
		return nil
	}
	return r.bus.PublishToTopic(topic(owner), bus.NewEvent(EventType, owner, name, nil))
}

// PlayChildAnim is an animation marker that asks the owner's child
// animations to post EventName.
type PlayChildAnim struct {
	EventName string `json:"eventName" yaml:"eventName"`
}

// DisplayName is the event name, or DefaultDisplayName when it is empty.
func (p PlayChildAnim) DisplayName() string {
	if p.EventName == "" {
		return DefaultDisplayName
	}
	return p.EventName
}

// Notify fires the marker for owner. Delivery is best effort: failures are
// logged and never returned to the animation that fired it.
func (p PlayChildAnim) Notify(r *Relay, owner string) {
	if r == nil || p.EventName == "" {
		return
	}
	if err := r.Post(owner, p.EventName); err != nil {
		r.log.Warn("child anim event failed",
			log.String("owner", owner),
			log.String("event", p.EventName),
			log.Error(err),
		)
	}
}

// ChildAnimInstance is a Listener that records what it was posted, for hosts
// that poll instead of reacting.
type ChildAnimInstance struct {
	Name string

	mu     sync.Mutex
	events []string
}

func (c *ChildAnimInstance) OnPostEvent(name string) error {
	c.mu.Lock()
	c.events = append(c.events, name)
	c.mu.Unlock()
	return nil
}

// Drain returns the recorded events and clears them.
func (c *ChildAnimInstance) Drain() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.events
	c.events = nil
	return out
}
