// Package system runs many locomotion instances at a fixed rate. Characters
// share nothing, so each tick updates them in parallel and then fans the
// outputs out to the registered sinks in spawn order.
package system

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/locomotion/internal/core/locomotion"
	"github.com/zeusync/locomotion/internal/core/movement"
	"github.com/zeusync/locomotion/internal/core/observability/log"
)

const DefaultTickRate = 60.0

var (
	ErrUnknownCharacter = errors.New("system: unknown character")
	ErrNilReader        = errors.New("system: nil movement reader")
)

// Stepper is implemented by hosts that advance their own movement state.
// The world steps them before reading.
type Stepper interface {
	Step(dt float64)
}

// Character is one registered locomotion instance and its collaborators.
type Character struct {
	ID       string
	Name     string
	Reader   movement.Reader
	Floor    movement.FloorQuery
	Instance *locomotion.Instance
}

// Frame is everything one tick produced.
type Frame struct {
	Tick    uint64              `json:"tick"`
	Time    time.Duration       `json:"time"`
	Delta   float64             `json:"delta"`
	Outputs []locomotion.Output `json:"outputs"`
}

// Sink consumes frames.
type Sink interface {
	Consume(ctx context.Context, f Frame) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, f Frame) error

func (fn SinkFunc) Consume(ctx context.Context, f Frame) error { return fn(ctx, f) }

// Options configure a World.
type Options struct {
	TickRate    float64
	MaxParallel int
	Logger      log.Log
}

// Metrics are cumulative tick statistics.
type Metrics struct {
	Characters        int
	Ticks             uint64
	TotalUpdateTime   time.Duration
	AverageUpdateTime time.Duration
	LastUpdateTime    time.Time
	SinkErrors        uint64
}

// World owns the characters. Spawn, Despawn and AddSink may be called while
// Run is active.
type World struct {
	opts Options
	log  log.Log

	mu    sync.RWMutex
	chars map[string]*Character
	order []string
	sinks []Sink

	tickMu  sync.Mutex
	frame   uint64
	elapsed time.Duration
	paused  bool
	metrics Metrics
}

// NewWorld builds an empty world.
func NewWorld(opts Options) *World {
	if opts.TickRate <= 0 {
		opts.TickRate = DefaultTickRate
	}
	return &World{
		opts:  opts,
		log:   log.OrNop(opts.Logger).Named("world"),
		chars: make(map[string]*Character),
	}
}

// FixedDeltaTime is the step Run feeds to Tick.
func (w *World) FixedDeltaTime() float64 { return 1 / w.opts.TickRate }

// Spawn registers a character and begins play on it.
func (w *World) Spawn(name string, r movement.Reader, floor movement.FloorQuery, opts locomotion.Options) (*Character, error) {
	if r == nil {
		return nil, ErrNilReader
	}
	id := uuid.NewString()
	if opts.Source == "" {
		opts.Source = name
	}
	if opts.Logger == nil {
		opts.Logger = w.log
	}
	c := &Character{
		ID:       id,
		Name:     name,
		Reader:   r,
		Floor:    floor,
		Instance: locomotion.New(opts),
	}
	c.Instance.Begin(r)

	w.mu.Lock()
	w.chars[id] = c
	w.order = append(w.order, id)
	w.mu.Unlock()

	w.log.Info("character spawned", log.String("id", id), log.String("name", name))
	return c, nil
}

// Despawn removes a character.
func (w *World) Despawn(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.chars[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCharacter, id)
	}
	delete(w.chars, id)
	for i, o := range w.order {
		if o == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return nil
}

func (w *World) Character(id string) (*Character, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.chars[id]
	return c, ok
}

// Characters lists characters in spawn order.
func (w *World) Characters() []*Character {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Character, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.chars[id])
	}
	return out
}

func (w *World) AddSink(s Sink) {
	if s == nil {
		return
	}
	w.mu.Lock()
	w.sinks = append(w.sinks, s)
	w.mu.Unlock()
}

func (w *World) SetPaused(p bool) {
	w.tickMu.Lock()
	w.paused = p
	w.tickMu.Unlock()
}

func (w *World) IsPaused() bool {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()
	return w.paused
}

func (w *World) FrameCount() uint64 {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()
	return w.frame
}

func (w *World) Metrics() Metrics {
	w.tickMu.Lock()
	m := w.metrics
	w.tickMu.Unlock()

	w.mu.RLock()
	m.Characters = len(w.chars)
	w.mu.RUnlock()
	return m
}

// Tick advances every character by dt and hands the frame to the sinks. A
// paused world returns an empty frame. A ctx canceled before the tick starts
// is returned without touching any character. Sink errors are joined into the
// returned error after every sink has run.
func (w *World) Tick(ctx context.Context, dt float64) (Frame, error) {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()

	if w.paused {
		return Frame{Tick: w.frame, Time: w.elapsed}, nil
	}

	chars := w.Characters()
	w.mu.RLock()
	sinks := append([]Sink(nil), w.sinks...)
	w.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return Frame{Tick: w.frame, Time: w.elapsed}, err
	}

	start := time.Now()
	outputs := make([]locomotion.Output, len(chars))

	// once started, a frame runs to completion: every character is stepped
	// and the frame counter advances even if ctx is canceled meanwhile
	var g errgroup.Group
	if w.opts.MaxParallel > 0 {
		g.SetLimit(w.opts.MaxParallel)
	}
	for i, c := range chars {
		g.Go(func() error {
			if s, ok := c.Reader.(Stepper); ok {
				s.Step(dt)
			}
			outputs[i] = c.Instance.Update(dt, c.Reader, c.Floor)
			return nil
		})
	}
	_ = g.Wait()

	w.frame++
	w.elapsed += time.Duration(dt * float64(time.Second))
	f := Frame{Tick: w.frame, Time: w.elapsed, Delta: dt, Outputs: outputs}

	var all error
	for _, s := range sinks {
		if err := s.Consume(ctx, f); err != nil {
			all = errors.Join(all, err)
			w.metrics.SinkErrors++
		}
	}

	took := time.Since(start)
	w.metrics.Ticks = w.frame
	w.metrics.TotalUpdateTime += took
	w.metrics.AverageUpdateTime = w.metrics.TotalUpdateTime / time.Duration(w.frame)
	w.metrics.LastUpdateTime = start

	return f, all
}
