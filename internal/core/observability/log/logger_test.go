package log

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"", LevelInfo, false},
		{" WARN ", LevelWarn, false},
		{"error", LevelError, false},
		{"off", LevelSilent, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core), LevelWarn)

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept", Float64("distance", 12.5), Vec3("target", mgl64.Vec3{1, 2, 3}))
	l.Error("kept too", Error(errors.New("boom")))

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, 12.5, entry.ContextMap()["distance"])
}

func TestLoggerSetLevelPropagates(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	root := FromZap(zap.New(core), LevelError)
	child := root.Named("matching").With(String("character", "a"))

	child.Info("before")
	root.SetLevel(LevelDebug)
	child.Info("after")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "after", logs.All()[0].Message)
	assert.Equal(t, LevelDebug, child.GetLevel())
}

func TestSilentNeverLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core), LevelDebug)
	l.Log(LevelSilent, "nothing")
	assert.Equal(t, 0, logs.Len())
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := Nop()
	assert.Same(t, l, OrNop(l))
}
