package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestLoggerMethods(t *testing.T) {
	logger := NewTestLogger()

	logger.Trace("Trace message %d", 1)
	logger.Debug("Debug message %d", 2)
	logger.Info("Info message")
	logger.Warn("Warn message")
	logger.Error("Error message")

	assert.Len(t, logger.Logs, 5)
	assert.Equal(t, "TRACE", logger.Logs[0].Severity)
	assert.Equal(t, []interface{}{1}, logger.Logs[0].Arguments)
	assert.Equal(t, "Debug message 2", logger.Logs[1].String())
	assert.Equal(t, "WARNING", logger.Logs[3].Severity)
	assert.Equal(t, []string{"Error message"}, logger.Messages("error"))
}

func TestTestLoggerChildrenShareLogs(t *testing.T) {
	logger := NewTestLogger()
	child := logger.With(map[string]interface{}{"a": 1}).With(map[string]interface{}{"b": 2})
	child.Info("from child")
	logger.WithPrefix("[x]").Info("from prefix")

	assert.Equal(t, []string{"from child", "from prefix"}, logger.Messages("INFO"))
	tl := child.(*TestLogger)
	assert.Equal(t, map[string]interface{}{"a": 1, "b": 2}, tl.metadata)
	assert.Nil(t, logger.metadata)
}

func TestTestLoggerStack(t *testing.T) {
	primary := NewTestLogger()
	secondary := NewTestLogger()
	primary.Stack(secondary).Warn("both")
	assert.Len(t, primary.Logs, 1)
	assert.Len(t, secondary.Logs, 1)
}
