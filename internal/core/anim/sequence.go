// Package anim models the read-only animation assets the locomotion core
// samples: sequences with a play length and a set of named float curves.
package anim

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/locomotion/internal/core/curve"
	"github.com/zeusync/locomotion/internal/core/notify"
	"github.com/zeusync/locomotion/internal/core/observability/log"
)

// DistanceCurveName is the curve every distance-matched sequence carries.
const DistanceCurveName = "DistanceCurve"

// Sequence is an authored animation clip.
type Sequence struct {
	Name     string        `json:"name" yaml:"name"`
	Duration float64       `json:"duration" yaml:"duration"`
	Curves   []curve.Curve `json:"curves,omitempty" yaml:"curves,omitempty"`
	Markers  []Marker      `json:"markers,omitempty" yaml:"markers,omitempty"`

	index map[uint64]int
}

// Marker is a PlayChildAnim notify placed on the sequence timeline.
type Marker struct {
	Time                 float64 `json:"time" yaml:"time"`
	notify.PlayChildAnim `yaml:",inline"`
}

// NewSequence builds a sequence and indexes its curves.
func NewSequence(name string, duration float64, curves ...curve.Curve) *Sequence {
	s := &Sequence{Name: name, Duration: duration, Curves: curves}
	s.reindex()
	return s
}

func curveKey(name string) uint64 { return xxhash.Sum64String(name) }

// reindex runs before the sequence is shared, from NewSequence and when a
// library takes ownership.
func (s *Sequence) reindex() {
	s.index = make(map[uint64]int, len(s.Curves))
	for i := range s.Curves {
		s.index[curveKey(s.Curves[i].Name)] = i
	}
}

// Curve finds a curve by name.
func (s *Sequence) Curve(name string) (*curve.Curve, bool) {
	if s == nil {
		return nil, false
	}
	// sequences are shared between characters: never build the index here
	if i, ok := s.index[curveKey(name)]; ok && i < len(s.Curves) && s.Curves[i].Name == name {
		return &s.Curves[i], true
	}
	for i := range s.Curves {
		if s.Curves[i].Name == name {
			return &s.Curves[i], true
		}
	}
	return nil, false
}

// MarkersBetween returns the markers a cursor moving from from to to passes,
// in timeline order: from < Time <= to, with Time == 0 included when the
// cursor starts at zero. A cursor that did not advance passes nothing.
func (s *Sequence) MarkersBetween(from, to float64) []Marker {
	if s == nil || to <= from || len(s.Markers) == 0 {
		return nil
	}
	var out []Marker
	for _, m := range s.Markers {
		if (m.Time > from || (from <= 0 && m.Time == 0)) && m.Time <= to {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// DistanceTime samples the sequence's distance curve. A sequence without one
// yields 0.
func (s *Sequence) DistanceTime(distance float64, l log.Log) float64 {
	c, ok := s.Curve(DistanceCurveName)
	if !ok {
		return 0
	}
	return c.Sample(distance, l)
}

// Clamp limits t to the sequence's play length.
func (s *Sequence) Clamp(t float64) float64 {
	if t > s.Duration {
		return s.Duration
	}
	return t
}
