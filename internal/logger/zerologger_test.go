package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroLogger_Info(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter("development", buf)

	log.Info("info-test", Field{Key: "key", Value: "value"})

	output := buf.String()
	assert.Contains(t, output, "info-test")
	assert.Contains(t, output, `"key":"value"`)
	assert.Contains(t, output, `"level":"info"`)
}

func TestZeroLogger_DebugShownInDev(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter("development", buf)

	log.Debug("debug-test")

	assert.Contains(t, buf.String(), "debug-test")
}

func TestZeroLogger_DebugHiddenInProduction(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter("production", buf)

	log.Debug("debug-hidden")

	assert.Empty(t, buf.String())
}

func TestZeroLogger_ErrorField(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter("development", buf)

	log.Error("error-test", Field{Key: "err", Value: errors.New("boom")})

	output := buf.String()
	assert.Contains(t, output, `"level":"error"`)
	assert.Contains(t, output, `"err":"boom"`)
}

func TestZeroLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter("development", buf).With(Field{Key: "component", Value: "worker"})

	log.Warn("warn-test", Field{Key: "attempt", Value: 2})

	output := buf.String()
	assert.Contains(t, output, `"component":"worker"`)
	assert.Contains(t, output, `"attempt":2`)
	assert.Contains(t, output, `"level":"warn"`)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error("ignored") })
}
