package matching

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/locomotion/internal/core/anim"
	"github.com/zeusync/locomotion/internal/core/curve"
	"github.com/zeusync/locomotion/internal/core/movement"
	"github.com/zeusync/locomotion/internal/core/predict"
	"github.com/zeusync/locomotion/internal/core/systems/physics"
)

const tick = 1.0 / 60.0

func distanceSeq(name string, duration float64, keys ...curve.Key) *anim.Sequence {
	return anim.NewSequence(name, duration, curve.Curve{Name: anim.DistanceCurveName, Keys: keys})
}

func testBindings() Bindings {
	return Bindings{
		Start:     distanceSeq("JogStart", 1.0, curve.Key{Value: 0, Time: 0}, curve.Key{Value: 50, Time: 0.3}, curve.Key{Value: 200, Time: 1.0}),
		Stop:      distanceSeq("JogStop", 1.2, curve.Key{Value: -300, Time: 0}, curve.Key{Value: -100, Time: 0.6}, curve.Key{Value: 0, Time: 1.2}),
		JumpStart: distanceSeq("JumpStart", 0.8, curve.Key{Value: 0, Time: 0}, curve.Key{Value: 100, Time: 0.8}),
		FallLand:  distanceSeq("FallLand", 0.6, curve.Key{Value: -400, Time: 0}, curve.Key{Value: 0, Time: 0.6}),
	}
}

func sample(loc, vel, acc mgl64.Vec3, falling bool) movement.Sample {
	return movement.Sample{
		Location:               loc,
		Velocity:               vel,
		Acceleration:           acc,
		BrakingFriction:        2,
		MaxBrakingDeceleration: 2048,
		MaxSimulationTimeStep:  0.05,
		Falling:                falling,
		GravityZ:               -980,
		HalfHeight:             88,
	}
}

var floor = movement.FlatFloor{Z: 0, Clearance: 88}

func newRunning(t *testing.T, cfg Config, at mgl64.Vec3) *Machine {
	t.Helper()
	m := New(cfg, testBindings(), nil)
	idle := sample(at, mgl64.Vec3{}, mgl64.Vec3{}, false)
	m.Reset(idle)
	assert.False(t, m.Update(idle, floor))
	assert.Equal(t, PhaseIdle, m.State().Phase)

	run := sample(at, mgl64.Vec3{}, mgl64.Vec3{1000, 0, 0}, false)
	require.True(t, m.Update(run, floor))
	return m
}

func TestEnterAcceleratingAnchorsAtLocation(t *testing.T) {
	m := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 0, 0})
	st := m.State()
	assert.Equal(t, PhaseAccelerating, st.Phase)
	assert.True(t, st.Accelerating)
	assert.Equal(t, mgl64.Vec3{}, st.Target)
	assert.True(t, st.TargetValid)
	assert.Equal(t, 0.0, st.StartCursor)
}

func TestStartCursorCurveThenRealTime(t *testing.T) {
	m := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 0, 0})
	acc := mgl64.Vec3{1000, 0, 0}
	at := func(x float64) movement.Sample { return sample(mgl64.Vec3{x, 0, 0}, mgl64.Vec3{300, 0, 0}, acc, false) }

	// no distance covered yet: real time drives
	m.Evaluate(at(0), tick)
	assert.InDelta(t, tick, m.State().StartCursor, 1e-12)

	// curve runs ahead: cursor jumps to the curve
	m.Evaluate(at(50), tick)
	assert.InDelta(t, 0.3, m.State().StartCursor, 1e-12)

	m.Evaluate(at(60), tick)
	want := 0.3 + 10.0/150.0*0.7
	assert.InDelta(t, want, m.State().StartCursor, 1e-12)

	// standing still: real time again
	m.Evaluate(at(60), tick)
	assert.InDelta(t, want+tick, m.State().StartCursor, 1e-12)

	// far past the curve: clamped to the sequence length
	m.Evaluate(at(1000), tick)
	assert.Equal(t, 1.0, m.State().StartCursor)
	m.Evaluate(at(1000), tick)
	assert.Equal(t, 1.0, m.State().StartCursor)

	// only the start cursor moved
	assert.Equal(t, 0.0, m.State().StopCursor)
}

func TestEnterDeceleratingPredictsStop(t *testing.T) {
	m := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 0, 0})
	m.Evaluate(sample(mgl64.Vec3{100, 0, 0}, mgl64.Vec3{600, 0, 0}, mgl64.Vec3{1000, 0, 0}, false), tick)

	release := sample(mgl64.Vec3{100, 0, 0}, mgl64.Vec3{600, 0, 0}, mgl64.Vec3{}, false)
	require.True(t, m.Update(release, floor))

	st := m.State()
	assert.Equal(t, PhaseDecelerating, st.Phase)
	assert.False(t, st.Accelerating)
	assert.Equal(t, 0.0, st.StopCursor)
	assert.True(t, st.TargetValid)
	assert.Equal(t, predict.ReasonStopped, st.Prediction)

	want := predict.Predict(release.Location, release.Velocity, release.Acceleration, predict.Params{
		Friction:      release.BrakingFriction,
		Deceleration:  release.MaxBrakingDeceleration,
		Step:          release.MaxSimulationTimeStep,
		MaxIterations: predict.DefaultMaxIterations,
	})
	require.True(t, want.OK)
	assert.Equal(t, want.Location, st.Target)
	require.Greater(t, st.Target[0], 100.0)
	require.Less(t, st.Target[0], 200.0)

	startBefore := st.StartCursor
	m.Evaluate(release, tick)
	st = m.State()
	d := st.Target[0] - 100
	assert.InDelta(t, 0.6+(100-d)/100*0.6, st.StopCursor, 1e-9)
	assert.Equal(t, startBefore, st.StartCursor)

	// arriving at the target plays out the stop
	arrived := sample(st.Target, mgl64.Vec3{}, mgl64.Vec3{}, false)
	assert.True(t, m.Update(arrived, floor))
	assert.Equal(t, PhaseIdle, m.State().Phase)
	m.Evaluate(arrived, tick)
	assert.Equal(t, 1.2, m.State().StopCursor)
}

func TestPredictionFailureKeepsTarget(t *testing.T) {
	m := newRunning(t, DefaultConfig(), mgl64.Vec3{10, 20, 0})

	release := sample(mgl64.Vec3{80, 20, 0}, mgl64.Vec3{600, 0, 0}, mgl64.Vec3{}, false)
	release.BrakingFriction = 0
	m.Update(release, floor)

	st := m.State()
	assert.Equal(t, mgl64.Vec3{10, 20, 0}, st.Target)
	assert.False(t, st.TargetValid)
	assert.Equal(t, predict.ReasonNoDecay, st.Prediction)

	// re-accelerating refreshes the anchor
	m.Update(sample(mgl64.Vec3{90, 20, 0}, mgl64.Vec3{600, 0, 0}, mgl64.Vec3{1000, 0, 0}, false), floor)
	st = m.State()
	assert.True(t, st.TargetValid)
	assert.Equal(t, mgl64.Vec3{90, 20, 0}, st.Target)
}

func TestPredictionBudgetExhausted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 1
	m := newRunning(t, cfg, mgl64.Vec3{0, 0, 0})

	m.Update(sample(mgl64.Vec3{50, 0, 0}, mgl64.Vec3{600, 0, 0}, mgl64.Vec3{}, false), floor)
	st := m.State()
	assert.Equal(t, predict.ReasonBudgetExhausted, st.Prediction)
	assert.False(t, st.TargetValid)
	assert.Equal(t, mgl64.Vec3{}, st.Target)
}

func TestMissingBindingFreezesCursor(t *testing.T) {
	m := New(DefaultConfig(), Bindings{}, nil)
	s := sample(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{1000, 0, 0}, false)
	m.Reset(s)
	m.Update(s, floor)
	for i := 0; i < 10; i++ {
		m.Evaluate(sample(mgl64.Vec3{float64(i) * 10, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{1000, 0, 0}, false), tick)
	}
	assert.Equal(t, 0.0, m.State().StartCursor)
	assert.Equal(t, 0.0, m.State().StopCursor)

	// binding only the stop sequence leaves the start cursor frozen
	b := testBindings()
	m.SetBindings(Bindings{Stop: b.Stop})
	m.Evaluate(sample(mgl64.Vec3{500, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{1000, 0, 0}, false), tick)
	assert.Equal(t, 0.0, m.State().StartCursor)
}

func TestCursorMonotonicWithinPhase(t *testing.T) {
	m := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 0, 0})
	xs := []float64{0, 5, 3, 40, 38, 120, 90, 90, 250, 10, 400, 0}
	last := 0.0
	for _, x := range xs {
		m.Evaluate(sample(mgl64.Vec3{x, 0, 0}, mgl64.Vec3{300, 0, 0}, mgl64.Vec3{1000, 0, 0}, false), tick)
		c := m.State().StartCursor
		assert.GreaterOrEqual(t, c, last, "x=%v", x)
		assert.LessOrEqual(t, c, 1.0)
		last = c
	}
}

func TestNegativeDeltaTimeDoesNotRewind(t *testing.T) {
	m := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 0, 0})
	s := sample(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{1000, 0, 0}, false)
	m.Evaluate(s, 0.1)
	m.Evaluate(s, -0.5)
	assert.InDelta(t, 0.1, m.State().StartCursor, 1e-12)
}

func TestJumpAndLandWithInput(t *testing.T) {
	m := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 0, 88})
	acc := mgl64.Vec3{1000, 0, 0}
	m.Evaluate(sample(mgl64.Vec3{100, 0, 88}, mgl64.Vec3{400, 0, 0}, acc, false), tick)
	require.Greater(t, m.State().StartCursor, 0.5)

	takeoff := sample(mgl64.Vec3{110, 0, 90}, mgl64.Vec3{400, 0, 420}, acc, true)
	require.True(t, m.Update(takeoff, floor))
	st := m.State()
	assert.True(t, st.Falling)
	assert.True(t, st.Accelerating)
	assert.Equal(t, 0.0, st.StartCursor)
	assert.Equal(t, takeoff.Location, st.Target)
	assert.True(t, st.Landing)
	assert.Equal(t, PhaseLanding, st.Phase)

	m.Evaluate(takeoff, tick)
	assert.InDelta(t, tick, m.State().StartCursor, 1e-12)

	rising := sample(mgl64.Vec3{150, 0, 150}, mgl64.Vec3{400, 0, 200}, acc, true)
	m.Update(rising, floor)
	assert.True(t, m.State().Landing)
	m.Evaluate(rising, tick)
	assert.InDelta(t, 0.8*72.11102550927978/100, m.State().StartCursor, 1e-9)

	high := sample(mgl64.Vec3{200, 0, 200}, mgl64.Vec3{400, 0, 100}, acc, true)
	assert.True(t, m.Update(high, floor))
	assert.False(t, m.State().Landing)
	assert.Equal(t, PhaseFalling, m.State().Phase)

	apex := sample(mgl64.Vec3{300, 0, 250}, mgl64.Vec3{400, 0, -10}, acc, true)
	m.Update(apex, floor)
	st = m.State()
	assert.False(t, st.Accelerating)
	assert.Equal(t, 0.0, st.StopCursor)
	assert.Equal(t, predict.ReasonLanded, st.Prediction)
	assert.True(t, st.TargetValid)
	assert.Equal(t, 88.0, st.Target[2])
	assert.Greater(t, st.Target[0], apex.Location[0])
	assert.False(t, st.Landing)

	startBefore := st.StartCursor
	m.Evaluate(apex, tick)
	// FallLand runs from -400 to the plant at 0
	expect := 0.6 * (400 - physics.Dist(apex.Location, st.Target)) / 400
	if expect <= 0 {
		expect = tick
	}
	assert.InDelta(t, expect, m.State().StopCursor, 1e-9)
	assert.Equal(t, startBefore, m.State().StartCursor)

	landed := sample(st.Target, mgl64.Vec3{400, 0, 0}, acc, false)
	assert.True(t, m.Update(landed, floor))
	st = m.State()
	assert.False(t, st.Falling)
	assert.False(t, st.Landing)
	assert.True(t, st.Accelerating)
	assert.Equal(t, PhaseAccelerating, st.Phase)
	// re-armed, no fresh edge: cursors carry over
	assert.Equal(t, startBefore, st.StartCursor)
}

func TestLandWithoutInputStartsStop(t *testing.T) {
	m := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 0, 88})
	m.Update(sample(mgl64.Vec3{0, 0, 100}, mgl64.Vec3{0, 0, -50}, mgl64.Vec3{}, true), floor)
	m.Evaluate(sample(mgl64.Vec3{0, 0, 95}, mgl64.Vec3{0, 0, -50}, mgl64.Vec3{}, true), tick)
	require.Greater(t, m.State().StopCursor, 0.0)

	land := sample(mgl64.Vec3{0, 0, 88}, mgl64.Vec3{300, 0, 0}, mgl64.Vec3{}, false)
	m.Update(land, floor)
	st := m.State()
	assert.False(t, st.Accelerating)
	assert.Equal(t, 0.0, st.StopCursor)
	assert.Equal(t, PhaseDecelerating, st.Phase)
	assert.Equal(t, predict.ReasonStopped, st.Prediction)
}

func TestWalkOffLedge(t *testing.T) {
	m := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 0, 300})
	ledge := sample(mgl64.Vec3{100, 0, 300}, mgl64.Vec3{400, 0, -5}, mgl64.Vec3{1000, 0, 0}, true)
	require.True(t, m.Update(ledge, floor))
	st := m.State()
	assert.True(t, st.Falling)
	assert.False(t, st.Accelerating)
	assert.Equal(t, PhaseFalling, st.Phase)
	assert.Equal(t, predict.ReasonLanded, st.Prediction)
	assert.Equal(t, 88.0, st.Target[2])
}

func TestLandingThresholdConfigurable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LandingThreshold = 10
	m := newRunning(t, cfg, mgl64.Vec3{0, 0, 88})

	m.Update(sample(mgl64.Vec3{0, 0, 90}, mgl64.Vec3{0, 0, 400}, mgl64.Vec3{}, true), floor)
	assert.True(t, m.State().Landing)

	m.Update(sample(mgl64.Vec3{0, 0, 110}, mgl64.Vec3{0, 0, 380}, mgl64.Vec3{}, true), floor)
	assert.False(t, m.State().Landing)
}

func TestLandingFalseWhenGrounded(t *testing.T) {
	m := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 0, 88})
	// upward velocity on the ground never sets landing
	m.Update(sample(mgl64.Vec3{0, 0, 88}, mgl64.Vec3{0, 0, 50}, mgl64.Vec3{1000, 0, 0}, false), floor)
	assert.False(t, m.State().Landing)
}

func TestNewFillsLandingThreshold(t *testing.T) {
	m := New(Config{}, Bindings{}, nil)
	assert.Equal(t, DefaultLandingThreshold, m.Config().LandingThreshold)
	assert.Equal(t, predict.DefaultMaxIterations, m.Config().MaxIterations)
}

func TestPhaseText(t *testing.T) {
	b, err := PhaseLanding.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "landing", string(b))

	var p Phase
	require.NoError(t, p.UnmarshalText([]byte("decelerating")))
	assert.Equal(t, PhaseDecelerating, p)
	assert.Error(t, p.UnmarshalText([]byte("sprinting")))
	assert.Equal(t, "phase(9)", Phase(9).String())
}
