package sim

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScript = errors.New("sim: invalid script")

// Segment holds an input for a span of time. Jump, when positive, launches
// the character with that vertical speed as the segment starts.
type Segment struct {
	Duration float64    `yaml:"duration" json:"duration"`
	Input    mgl64.Vec3 `yaml:"input" json:"input"`
	Jump     float64    `yaml:"jump,omitempty" json:"jump,omitempty"`
}

// Script is an input timeline.
type Script struct {
	Name     string    `yaml:"name" json:"name"`
	Segments []Segment `yaml:"segments" json:"segments"`
}

// Duration is the total scripted time.
func (s *Script) Duration() float64 {
	total := 0.0
	for _, seg := range s.Segments {
		total += seg.Duration
	}
	return total
}

// At returns the segment active at time t. Past the end the character idles.
func (s *Script) At(t float64) (int, Segment) {
	start := 0.0
	for i, seg := range s.Segments {
		if t < start+seg.Duration {
			return i, seg
		}
		start += seg.Duration
	}
	return len(s.Segments), Segment{}
}

// Validate checks every segment has a positive duration.
func (s *Script) Validate() error {
	for i, seg := range s.Segments {
		if seg.Duration <= 0 {
			return fmt.Errorf("%w: segment %d duration %v", ErrInvalidScript, i, seg.Duration)
		}
		if seg.Jump < 0 {
			return fmt.Errorf("%w: segment %d jump %v", ErrInvalidScript, i, seg.Jump)
		}
	}
	return nil
}

// LoadScript decodes a YAML script.
func LoadScript(r io.Reader) (*Script, error) {
	var s Script
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScriptFile reads a YAML script from path.
func LoadScriptFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadScript(f)
}

// StartStop runs forward along +X for runFor seconds, then releases input for
// stopFor seconds.
func StartStop(accel, runFor, stopFor float64) *Script {
	return &Script{
		Name: "start-stop",
		Segments: []Segment{
			{Duration: runFor, Input: mgl64.Vec3{accel, 0, 0}},
			{Duration: stopFor},
		},
	}
}

// RunJump runs, jumps while holding input, then releases after landing.
func RunJump(accel, jump float64) *Script {
	return &Script{
		Name: "run-jump",
		Segments: []Segment{
			{Duration: 1, Input: mgl64.Vec3{accel, 0, 0}},
			{Duration: 1.2, Input: mgl64.Vec3{accel, 0, 0}, Jump: jump},
			{Duration: 1.5},
		},
	}
}
