package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

var CLI struct {
	Config string `help:"Simulator configuration file." short:"c" type:"existingfile"`
	Debug  bool   `help:"Whether to enable debug logging."`

	Run struct {
		Script     string  `help:"YAML input script; overrides --scenario." type:"existingfile"`
		Scenario   string  `help:"Built-in scenario." enum:"start-stop,run-jump" default:"start-stop"`
		Characters int     `help:"Number of characters to spawn." default:"1"`
		Ticks      int     `help:"Ticks to run; 0 runs until the script ends." default:"0"`
		Realtime   bool    `help:"Tick on the wall clock instead of as fast as possible."`
		Quiet      bool    `help:"Do not print frames to standard output." short:"q"`
		Accel      float64 `help:"Input acceleration for built-in scenarios." default:"2048"`
	} `cmd:"" help:"Simulate scripted characters and print one JSON frame per tick."`

	Predict struct {
		Location     []float64 `help:"Start location x,y,z." default:"0,0,88"`
		Velocity     []float64 `help:"Velocity x,y,z." required:""`
		Acceleration []float64 `help:"Input acceleration x,y,z." default:"0,0,0"`
		Friction     float64   `help:"Braking friction." default:"2"`
		Deceleration float64   `help:"Max braking deceleration." default:"2048"`
		Step         float64   `help:"Simulation step in seconds." default:"0.05"`
		Iterations   int       `help:"Iteration budget." default:"100"`
		Falling      bool      `help:"Predict a landing instead of a stop."`
		Gravity      float64   `help:"Gravity Z for falling predictions." default:"-980"`
		HalfHeight   float64   `help:"Capsule half height." default:"88"`
		FloorZ       float64   `help:"Height of the flat floor." default:"0"`
	} `cmd:"" help:"Predict where a character comes to rest."`

	Sample struct {
		Library   string    `arg:"" help:"Animation library YAML." type:"existingfile"`
		Sequence  string    `arg:"" help:"Sequence name."`
		Distances []float64 `arg:"" help:"Distances to sample."`
	} `cmd:"" help:"Sample a sequence's distance curve."`

	Defaults struct {
	} `cmd:"" help:"Write the default configuration to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("locomotion-sim"),
		kong.Description("distance matching and lean simulator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	var err error
	switch ctx.Command() {
	case "run":
		err = runCommand(os.Stdout)
	case "predict":
		err = predictCommand(os.Stdout)
	case "sample <library> <sequence> <distances>":
		err = sampleCommand(os.Stdout)
	case "defaults":
		err = defaultsCommand(os.Stdout)
	}
	if err != nil {
		writeError(err)
	}
}
