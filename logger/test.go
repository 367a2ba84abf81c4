package logger

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

type TestLogEntry struct {
	Severity  string
	Message   string
	Arguments []interface{}
}

// String returns the formatted message.
func (e TestLogEntry) String() string {
	if len(e.Arguments) == 0 {
		return e.Message
	}
	return fmt.Sprintf(e.Message, e.Arguments...)
}

// TestLogger records every entry in memory. Loggers derived with With or
// WithPrefix record into the same Logs slice as their parent.
type TestLogger struct {
	mu       *sync.Mutex
	root     *TestLogger
	metadata map[string]interface{}
	Logs     []TestLogEntry
	child    Logger
}

var _ Logger = (*TestLogger)(nil)

func (c *TestLogger) WithContext(ctx context.Context) Logger {
	return c
}

// WithPrefix will return a new logger with a prefix prepended to the message
func (c *TestLogger) WithPrefix(prefix string) Logger {
	return c
}

func (c *TestLogger) With(metadata map[string]interface{}) Logger {
	kv := make(map[string]interface{}, len(c.metadata)+len(metadata))
	for k, v := range c.metadata {
		kv[k] = v
	}
	for k, v := range metadata {
		kv[k] = v
	}
	child := c.child
	if child != nil {
		child = child.With(metadata)
	}
	return &TestLogger{mu: c.mu, root: c.rootLogger(), metadata: kv, child: child}
}

func (c *TestLogger) rootLogger() *TestLogger {
	if c.root != nil {
		return c.root
	}
	return c
}

func (c *TestLogger) Log(level string, msg string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	root := c.rootLogger()
	root.Logs = append(root.Logs, TestLogEntry{level, msg, args})
}

// Messages returns the formatted messages recorded at severity.
func (c *TestLogger) Messages(severity string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, entry := range c.rootLogger().Logs {
		if strings.EqualFold(entry.Severity, severity) {
			out = append(out, entry.String())
		}
	}
	return out
}

func (c *TestLogger) Trace(msg string, args ...interface{}) {
	c.Log("TRACE", msg, args...)
	if c.child != nil {
		c.child.Trace(msg, args...)
	}
}

func (c *TestLogger) Debug(msg string, args ...interface{}) {
	c.Log("DEBUG", msg, args...)
	if c.child != nil {
		c.child.Debug(msg, args...)
	}
}

func (c *TestLogger) Info(msg string, args ...interface{}) {
	c.Log("INFO", msg, args...)
	if c.child != nil {
		c.child.Info(msg, args...)
	}
}

func (c *TestLogger) Warn(msg string, args ...interface{}) {
	c.Log("WARNING", msg, args...)
	if c.child != nil {
		c.child.Warn(msg, args...)
	}
}

func (c *TestLogger) Error(msg string, args ...interface{}) {
	c.Log("ERROR", msg, args...)
	if c.child != nil {
		c.child.Error(msg, args...)
	}
}

func (c *TestLogger) Fatal(msg string, args ...interface{}) {
	c.Log("FATAL", msg, args...)
	if c.child != nil {
		c.child.Fatal(msg, args...)
	}
	os.Exit(1)
}

func (c *TestLogger) Stack(next Logger) Logger {
	return &TestLogger{mu: c.mu, root: c.rootLogger(), metadata: c.metadata, child: next}
}

func (c *TestLogger) IsLevelEnabled(level LogLevel) bool {
	return level != LevelNone
}

// NewTestLogger returns a new Logger instance useful for testing
func NewTestLogger() *TestLogger {
	return &TestLogger{
		mu:   &sync.Mutex{},
		Logs: make([]TestLogEntry, 0),
	}
}
