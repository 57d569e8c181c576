package anim

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/locomotion/internal/core/curve"
)

var (
	ErrSequenceNotFound = errors.New("sequence not found")
	ErrInvalidSequence  = errors.New("invalid sequence")
)

// Library is a read-only set of sequences keyed by name.
type Library struct {
	sequences map[string]*Sequence
}

type libraryFile struct {
	Sequences []*Sequence `yaml:"sequences"`
}

// NewLibrary indexes the given sequences.
func NewLibrary(seqs ...*Sequence) (*Library, error) {
	lib := &Library{sequences: make(map[string]*Sequence, len(seqs))}
	for _, s := range seqs {
		if err := lib.add(s); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

func (l *Library) add(s *Sequence) error {
	if s == nil || s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidSequence)
	}
	if s.Duration < 0 {
		return fmt.Errorf("%w: %s has negative duration", ErrInvalidSequence, s.Name)
	}
	for _, m := range s.Markers {
		if m.Time < 0 || m.Time > s.Duration {
			return fmt.Errorf("%w: %s marker %s at %g outside [0, %g]",
				ErrInvalidSequence, s.Name, m.DisplayName(), m.Time, s.Duration)
		}
	}
	if _, exists := l.sequences[s.Name]; exists {
		return fmt.Errorf("%w: duplicate %s", ErrInvalidSequence, s.Name)
	}
	s.reindex()
	l.sequences[s.Name] = s
	return nil
}

// LoadYAML reads a library document:
//
//	sequences:
//	  - name: JogStart
//	    duration: 0.9
//	    curves:
//	      - name: DistanceCurve
//	        keys: [{value: 0, time: 0}, {value: 120, time: 0.9}]
//	    markers:
//	      - {time: 0.3, eventName: FootPlant}
func LoadYAML(r io.Reader) (*Library, error) {
	var f libraryFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode animation library: %w", err)
	}
	return NewLibrary(f.Sequences...)
}

// LoadFile reads a library from disk.
func LoadFile(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadYAML(f)
}

// Get returns the named sequence.
func (l *Library) Get(name string) (*Sequence, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: %s", ErrSequenceNotFound, name)
	}
	s, ok := l.sequences[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSequenceNotFound, name)
	}
	return s, nil
}

// Lookup is Get without the error, for optional bindings.
func (l *Library) Lookup(name string) *Sequence {
	if l == nil || name == "" {
		return nil
	}
	return l.sequences[name]
}

// Names lists the sequences in name order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.sequences))
	for n := range l.sequences {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Check validates every distance curve in the library and returns the names
// of sequences whose curve breaks the sampling preconditions.
func (l *Library) Check() []string {
	var bad []string
	for _, name := range l.Names() {
		c, ok := l.sequences[name].Curve(DistanceCurveName)
		if !ok {
			continue
		}
		if !curve.Validate(c.Keys).OK() {
			bad = append(bad, name)
		}
	}
	return bad
}
