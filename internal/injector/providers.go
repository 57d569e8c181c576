package injector

import (
	"fmt"

	"github.com/google/wire"

	"github.com/zeusync/locomotion/internal/config"
	"github.com/zeusync/locomotion/internal/core/anim"
	"github.com/zeusync/locomotion/internal/core/events/bus"
	"github.com/zeusync/locomotion/internal/core/locomotion"
	"github.com/zeusync/locomotion/internal/core/matching"
	"github.com/zeusync/locomotion/internal/core/notify"
	"github.com/zeusync/locomotion/internal/core/observability/log"
	"github.com/zeusync/locomotion/internal/core/system"
	"github.com/zeusync/locomotion/internal/telemetry"
)

// App is the assembled simulator.
type App struct {
	Config   *config.Config
	Log      *log.Logger
	Library  *anim.Library
	Bindings matching.Bindings
	Events   bus.EventBus
	Relay    *notify.Relay
	World    *system.World
	Hub      *telemetry.Hub
}

// ConfigPath is the config file to load; empty means defaults.
type ConfigPath string

var ProviderSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideLibrary,
	ProvideBindings,
	ProvideEventBus,
	ProvideRelay,
	ProvideWorld,
	ProvideHub,
	wire.Struct(new(App), "*"),
)

func ProvideConfig(path ConfigPath) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(string(path))
}

func ProvideLogger(cfg *config.Config) *log.Logger {
	return log.New(cfg.LogLevel())
}

// ProvideLibrary loads the animation library and warns about curves that
// break the sampling preconditions.
func ProvideLibrary(cfg *config.Config, l *log.Logger) (*anim.Library, error) {
	if cfg.Assets.Library == "" {
		return anim.NewLibrary()
	}
	lib, err := anim.LoadFile(cfg.Assets.Library)
	if err != nil {
		return nil, fmt.Errorf("load animation library: %w", err)
	}
	for _, name := range lib.Check() {
		l.Warn("bad distance curve", log.String("sequence", name))
	}
	return lib, nil
}

// ProvideBindings resolves the configured slot names. An empty name leaves the
// slot unbound.
func ProvideBindings(cfg *config.Config, lib *anim.Library) (matching.Bindings, error) {
	var b matching.Bindings
	slots := []struct {
		name string
		dst  **anim.Sequence
	}{
		{cfg.Assets.Start, &b.Start},
		{cfg.Assets.Stop, &b.Stop},
		{cfg.Assets.JumpStart, &b.JumpStart},
		{cfg.Assets.FallLand, &b.FallLand},
	}
	for _, s := range slots {
		if s.name == "" {
			continue
		}
		seq, err := lib.Get(s.name)
		if err != nil {
			return matching.Bindings{}, err
		}
		*s.dst = seq
	}
	return b, nil
}

// CharacterTopic carries the phase changes of every spawned character.
const CharacterTopic = "characters"

// ProvideEventBus builds the shared bus and subscribes the phase change log
// to CharacterTopic.
func ProvideEventBus(l *log.Logger) (bus.EventBus, error) {
	b := bus.New()
	phases := l.Named("phase")
	_, err := b.SubscribeTopic(CharacterTopic, locomotion.PhaseEventType, func(ev bus.Event) error {
		pc, ok := ev.Data().(locomotion.PhaseChange)
		if !ok {
			return fmt.Errorf("unexpected phase payload %T", ev.Data())
		}
		phases.Debug("phase changed",
			log.String("source", pc.Source),
			log.String("from", pc.From.String()),
			log.String("to", pc.To.String()),
			log.Vec3("location", pc.Location),
		)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe phase log: %w", err)
	}
	return b, nil
}

func ProvideRelay(b bus.EventBus, l *log.Logger) *notify.Relay {
	return notify.NewRelay(b, l)
}

func ProvideWorld(cfg *config.Config, l *log.Logger) *system.World {
	return system.NewWorld(cfg.WorldOptions(l))
}

func ProvideHub(cfg *config.Config, l *log.Logger) *telemetry.Hub {
	return telemetry.NewHub(cfg.Telemetry.Path, l)
}

// CharacterOptions are the locomotion options every spawned character uses.
func (a *App) CharacterOptions(name string) locomotion.Options {
	return locomotion.Options{
		Matching:        a.Config.Matching(),
		LeanInterpSpeed: a.Config.Locomotion.LeanInterpSpeed,
		Bindings:        a.Bindings,
		Logger:          a.Log,
		Events:          a.Events,
		Topic:           CharacterTopic,
		Source:          name,
		Relay:           a.Relay,
	}
}
