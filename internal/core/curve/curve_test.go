package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var jogStop = []Key{{Value: 0, Time: 0}, {Value: 100, Time: 0.5}, {Value: 300, Time: 1.0}}

func TestSampleInterpolatesBetweenKeys(t *testing.T) {
	assert.InDelta(t, 0.75, Sample(jogStop, 200), 1e-12)
	assert.InDelta(t, 0.25, Sample(jogStop, 50), 1e-12)
}

func TestSampleExactAtKeys(t *testing.T) {
	keys := []Key{{-412.7, 0}, {-233.1, 0.13}, {-97.9, 0.41}, {-12.3, 0.77}, {0, 1.03}}
	for _, k := range keys {
		assert.Equal(t, k.Time, Sample(keys, k.Value), "key %v", k.Value)
	}
	for _, k := range jogStop {
		assert.Equal(t, k.Time, Sample(jogStop, k.Value), "key %v", k.Value)
	}
}

func TestSampleExtrapolates(t *testing.T) {
	// below the first key: bracket (0,100)
	assert.InDelta(t, -0.25, Sample(jogStop, -50), 1e-12)
	// above the last key: bracket (100,300)
	assert.InDelta(t, 1.25, Sample(jogStop, 400), 1e-12)
}

func TestSampleDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, Sample(nil, 10))
	assert.Equal(t, 0.0, Sample([]Key{{Value: 1, Time: 3}}, 10))

	// near-zero bracket width falls back to the lower key's time
	keys := []Key{{Value: 10, Time: 0.2}, {Value: 10 + 1e-6, Time: 0.9}}
	assert.Equal(t, 0.2, Sample(keys, 10.5))
}

func TestSampleTwoKeys(t *testing.T) {
	keys := []Key{{Value: 0, Time: 1}, {Value: 10, Time: 2}}
	assert.InDelta(t, 1.5, Sample(keys, 5), 1e-12)
	assert.InDelta(t, 3.0, Sample(keys, 20), 1e-12)
}

func TestSampleManyKeysMatchesLinearScan(t *testing.T) {
	keys := make([]Key, 0, 64)
	for i := 0; i < 64; i++ {
		keys = append(keys, Key{Value: float64(i*i) * 0.5, Time: float64(i) * 0.03})
	}
	for d := 0.0; d < keys[len(keys)-1].Value; d += 7.3 {
		j := 1
		for j < len(keys)-1 && d > keys[j].Value {
			j++
		}
		a, b := keys[j-1], keys[j]
		want := a.Time + (d-a.Value)/(b.Value-a.Value)*(b.Time-a.Time)
		assert.InDelta(t, want, Sample(keys, d), 1e-9, "distance %v", d)
	}
}

func TestCurveMethodNilSafe(t *testing.T) {
	var c *Curve
	assert.Equal(t, 0.0, c.Sample(10, nil))
	assert.Equal(t, 0, c.Len())

	c = &Curve{Name: "DistanceCurve", Keys: jogStop}
	assert.InDelta(t, 0.75, c.Sample(200, nil), 1e-12)
	assert.Equal(t, 3, c.Len())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		keys []Key
		want Report
	}{
		{"empty", nil, Report{Sorted: true, Unique: true}},
		{"good", jogStop, Report{Sorted: true, Unique: true}},
		{"unsorted", []Key{{0, 0}, {5, 1}, {3, 2}}, Report{Sorted: false, Unique: true}},
		{"duplicate", []Key{{0, 0}, {5, 1}, {5, 2}}, Report{Sorted: true, Unique: false}},
		{"both", []Key{{5, 0}, {0, 1}, {5, 2}}, Report{Sorted: false, Unique: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.keys)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Sorted && tt.want.Unique, got.OK())
		})
	}
}

func TestSampleMalformedStillTerminates(t *testing.T) {
	keys := []Key{{5, 0}, {0, 1}, {5, 2}, {1, 3}}
	assert.NotPanics(t, func() { _ = Sample(keys, 2) })
}
