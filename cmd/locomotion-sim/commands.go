package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/locomotion/internal/config"
	"github.com/zeusync/locomotion/internal/core/anim"
	"github.com/zeusync/locomotion/internal/core/movement"
	"github.com/zeusync/locomotion/internal/core/notify"
	"github.com/zeusync/locomotion/internal/core/observability/log"
	"github.com/zeusync/locomotion/internal/core/predict"
	"github.com/zeusync/locomotion/internal/core/system"
	"github.com/zeusync/locomotion/internal/injector"
	"github.com/zeusync/locomotion/internal/sim"
)

const spacing = 300.0

func vec3(name string, v []float64) (mgl64.Vec3, error) {
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("--%s needs three components, got %d", name, len(v))
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}

func loadScript() (*sim.Script, error) {
	if CLI.Run.Script != "" {
		return sim.LoadScriptFile(CLI.Run.Script)
	}
	switch CLI.Run.Scenario {
	case "run-jump":
		return sim.RunJump(CLI.Run.Accel, 420), nil
	default:
		return sim.StartStop(CLI.Run.Accel, 1, 1.5), nil
	}
}

// childLogger stands in for a character's child animations and logs what
// they are posted.
func childLogger(l log.Log, owner string) notify.Listener {
	l = l.Named("child").With(log.String("owner", owner))
	return notify.ListenerFunc(func(name string) error {
		l.Debug("child anim event", log.String("event", name))
		return nil
	})
}

func runCommand(out io.Writer) error {
	app, err := injector.InitializeApp(injector.ConfigPath(CLI.Config))
	if err != nil {
		return err
	}
	defer app.Log.Sync()
	if CLI.Debug {
		app.Log.SetLevel(log.LevelDebug)
	}

	script, err := loadScript()
	if err != nil {
		return err
	}
	if CLI.Run.Characters < 1 {
		return errors.New("--characters must be at least 1")
	}

	for i := range CLI.Run.Characters {
		h := sim.NewHost(sim.DefaultParams(), 0, float64(i)*spacing, script)
		name := fmt.Sprintf("character-%d", i)
		if _, err := app.World.Spawn(name, h, h, app.CharacterOptions(name)); err != nil {
			return err
		}
		if _, err := app.Relay.Attach(name, childLogger(app.Log, name)); err != nil {
			return err
		}
	}

	if !CLI.Run.Quiet {
		enc := json.NewEncoder(out)
		app.World.AddSink(system.SinkFunc(func(_ context.Context, f system.Frame) error {
			return enc.Encode(f)
		}))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if app.Config.Telemetry.Enabled {
		if _, err := app.Hub.Start(app.Config.Telemetry.Addr); err != nil {
			return err
		}
		defer app.Hub.Stop(context.Background())
		app.World.AddSink(app.Hub)
	}

	ticks := CLI.Run.Ticks
	if ticks <= 0 {
		ticks = int(script.Duration()*app.Config.World.TickRate) + 1
	}
	if CLI.Run.Realtime {
		return app.World.Run(ctx, uint64(ticks))
	}
	return app.World.Step(ctx, ticks)
}

func predictCommand(out io.Writer) error {
	p := CLI.Predict
	loc, err := vec3("location", p.Location)
	if err != nil {
		return err
	}
	vel, err := vec3("velocity", p.Velocity)
	if err != nil {
		return err
	}
	acc, err := vec3("acceleration", p.Acceleration)
	if err != nil {
		return err
	}

	params := predict.Params{
		Friction:      p.Friction,
		Deceleration:  p.Deceleration,
		Step:          p.Step,
		MaxIterations: p.Iterations,
	}
	var r predict.Result
	if p.Falling {
		floor := movement.FlatFloor{Z: p.FloorZ, Clearance: p.HalfHeight}
		r = predict.PredictFall(loc, vel, acc, predict.FallParams{
			Params:     params,
			GravityZ:   p.Gravity,
			HalfHeight: p.HalfHeight,
		}, floor)
	} else {
		r = predict.Predict(loc, vel, acc, params)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Location   mgl64.Vec3 `json:"location"`
		OK         bool       `json:"ok"`
		Reason     string     `json:"reason"`
		Iterations int        `json:"iterations"`
	}{r.Location, r.OK, r.Reason.String(), r.Iterations})
}

func sampleCommand(out io.Writer) error {
	lib, err := anim.LoadFile(CLI.Sample.Library)
	if err != nil {
		return err
	}
	seq, err := lib.Get(CLI.Sample.Sequence)
	if err != nil {
		return err
	}
	if _, ok := seq.Curve(anim.DistanceCurveName); !ok {
		return fmt.Errorf("%s has no %s", seq.Name, anim.DistanceCurveName)
	}
	l := log.New(log.LevelWarn)
	defer l.Sync()
	for _, d := range CLI.Sample.Distances {
		t := seq.DistanceTime(d, l)
		fmt.Fprintf(out, "%g\t%g\t%g\n", d, t, seq.Clamp(t))
	}
	return nil
}

func defaultsCommand(out io.Writer) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(config.Default()); err != nil {
		return err
	}
	return enc.Close()
}
