package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestToZap(t *testing.T) {
	base := NewTestLogger()
	zl := ToZap(base)

	zl.Info("test message", zap.String("key", "value"))
	zl.Debug("debug message", zap.Int("count", 42))
	zl.Warn("warning message")
	zl.Error("error message", zap.Bool("flag", true))

	assert.Equal(t, []string{"test message"}, base.Messages("INFO"))
	assert.Equal(t, []string{"debug message"}, base.Messages("DEBUG"))
	assert.Equal(t, []string{"warning message"}, base.Messages("WARNING"))
	assert.Equal(t, []string{"error message"}, base.Messages("ERROR"))
}

func TestZapBridgeWith(t *testing.T) {
	base := NewTestLogger()
	ToZap(base).With(zap.String("component", "etcd")).Named("client").Info("connected")
	assert.Equal(t, []string{"connected"}, base.Messages("INFO"))
}

func TestZapBridgeRespectsLevel(t *testing.T) {
	zl := ToZap(NewConsoleLogger(LevelError))
	assert.Nil(t, zl.Check(zap.InfoLevel, "skip"))
	assert.NotNil(t, zl.Check(zap.ErrorLevel, "keep"))
}
