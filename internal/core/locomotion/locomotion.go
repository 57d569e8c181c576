// Package locomotion is the per-character tick entry point. It reads the
// movement collaborator once per tick, updates the lean estimator and the
// distance-matching machine, and publishes the combined Output.
package locomotion

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/locomotion/internal/core/anim"
	"github.com/zeusync/locomotion/internal/core/events/bus"
	"github.com/zeusync/locomotion/internal/core/lean"
	"github.com/zeusync/locomotion/internal/core/matching"
	"github.com/zeusync/locomotion/internal/core/movement"
	"github.com/zeusync/locomotion/internal/core/notify"
	"github.com/zeusync/locomotion/internal/core/observability/log"
)

// PhaseEventType is published on Options.Events whenever the phase changes.
const PhaseEventType = "locomotion.phase"

// Options configure an Instance. Zero values are usable.
type Options struct {
	Matching        matching.Config
	LeanInterpSpeed float64
	Bindings        matching.Bindings

	Logger log.Log
	// Events receives PhaseChange events when set.
	Events bus.EventBus
	Topic  string
	// Source names the character in events and logs.
	Source string

	// Relay receives the markers the active cursor passes each tick, posted
	// to the child listeners of Owner. Owner defaults to Source.
	Relay *notify.Relay
	Owner string
}

// Output is what the animation layer reads after each tick.
type Output struct {
	Source   string     `json:"source,omitempty"`
	Location mgl64.Vec3 `json:"location"`

	Yaw            float64 `json:"yaw"`
	YawRate        float64 `json:"yawRate"`
	InverseYawRate float64 `json:"inverseYawRate"`

	Accelerating bool           `json:"accelerating"`
	Falling      bool           `json:"falling"`
	Landing      bool           `json:"landing"`
	Phase        matching.Phase `json:"phase"`

	StartCursor float64    `json:"startCursor"`
	StopCursor  float64    `json:"stopCursor"`
	Target      mgl64.Vec3 `json:"target"`
	TargetValid bool       `json:"targetValid"`

	// Notifies names the markers fired this tick.
	Notifies []string `json:"notifies,omitempty"`
}

// PhaseChange is the payload of a PhaseEventType event.
type PhaseChange struct {
	Source   string
	From     matching.Phase
	To       matching.Phase
	Location mgl64.Vec3
}

// Instance is one character's locomotion state. Only its owner's tick may
// touch it.
type Instance struct {
	opts    Options
	log     log.Log
	lean    *lean.Estimator
	machine *matching.Machine

	started bool
	out     Output
}

// New builds an instance. Call Begin before the first Update, or let Update
// do it lazily.
func New(opts Options) *Instance {
	if opts.Owner == "" {
		opts.Owner = opts.Source
	}
	l := log.OrNop(opts.Logger).Named("locomotion")
	if opts.Source != "" {
		l = l.With(log.String("source", opts.Source))
	}
	return &Instance{
		opts:    opts,
		log:     l,
		lean:    lean.New(opts.LeanInterpSpeed),
		machine: matching.New(opts.Matching, opts.Bindings, l),
		out:     Output{Source: opts.Source},
	}
}

// Begin seeds the lean estimator with the current facing and anchors the
// matching machine at the current location.
func (i *Instance) Begin(r movement.Reader) {
	if r == nil {
		return
	}
	s := movement.Read(r)
	i.lean.Reset(s.Yaw)
	i.machine.Reset(s)
	i.started = true
	i.publish(s, nil)
}

// Update runs one tick. A nil reader leaves every output unchanged.
func (i *Instance) Update(dt float64, r movement.Reader, floor movement.FloorQuery) Output {
	if r == nil {
		return i.out
	}
	if !i.started {
		i.Begin(r)
	}

	s := movement.Read(r)
	i.lean.Update(s.Yaw, dt)

	from := i.machine.State().Phase
	if i.machine.Update(s, floor) {
		i.phaseChanged(from, s)
	}
	seq, before := i.machine.Active()
	i.machine.Evaluate(s, dt)
	_, after := i.machine.Active()

	i.publish(s, i.fire(seq.MarkersBetween(before, after)))
	return i.out
}

// Output returns the last published output.
func (i *Instance) Output() Output { return i.out }

// SetBindings rebinds the distance-matched sequences.
func (i *Instance) SetBindings(b matching.Bindings) { i.machine.SetBindings(b) }

func (i *Instance) Machine() *matching.Machine { return i.machine }
func (i *Instance) Lean() *lean.Estimator      { return i.lean }

// fire posts each marker through the relay and returns the names posted.
func (i *Instance) fire(markers []anim.Marker) []string {
	var names []string
	for _, m := range markers {
		if m.EventName == "" {
			continue
		}
		m.Notify(i.opts.Relay, i.opts.Owner)
		names = append(names, m.EventName)
	}
	return names
}

func (i *Instance) publish(s movement.Sample, notifies []string) {
	st := i.machine.State()
	i.out = Output{
		Source:         i.opts.Source,
		Location:       s.Location,
		Yaw:            s.Yaw,
		YawRate:        i.lean.YawRate(),
		InverseYawRate: i.lean.InverseYawRate(),
		Accelerating:   st.Accelerating,
		Falling:        st.Falling,
		Landing:        st.Landing,
		Phase:          st.Phase,
		StartCursor:    st.StartCursor,
		StopCursor:     st.StopCursor,
		Target:         st.Target,
		TargetValid:    st.TargetValid,
		Notifies:       notifies,
	}
}

func (i *Instance) phaseChanged(from matching.Phase, s movement.Sample) {
	to := i.machine.State().Phase
	i.log.Debug("phase changed",
		log.String("from", from.String()),
		log.String("to", to.String()),
	)
	if i.opts.Events == nil {
		return
	}
	ev := bus.NewEvent(PhaseEventType, i.opts.Source, PhaseChange{
		Source:   i.opts.Source,
		From:     from,
		To:       to,
		Location: s.Location,
	}, nil)
	if err := i.opts.Events.PublishToTopic(i.opts.Topic, ev); err != nil {
		i.log.Warn("phase event delivery failed", log.Error(err))
	}
}
