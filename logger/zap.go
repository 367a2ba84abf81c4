package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapBridge lets libraries that only accept a *zap.Logger (the etcd client) write
// through a Logger.
type zapBridge struct {
	logger Logger
}

func (z *zapBridge) Enabled(level zapcore.Level) bool {
	return z.logger.IsLevelEnabled(fromZapLevel(level))
}

func (z *zapBridge) With(fields []zapcore.Field) zapcore.Core {
	return &zapBridge{logger: z.logger.With(fieldsToMap(fields))}
}

func (z *zapBridge) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if z.Enabled(entry.Level) {
		return ce.AddCore(entry, z)
	}
	return ce
}

func (z *zapBridge) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	l := z.logger
	if len(fields) > 0 {
		l = l.With(fieldsToMap(fields))
	}
	if entry.LoggerName != "" {
		l = l.WithPrefix("[" + entry.LoggerName + "]")
	}
	switch fromZapLevel(entry.Level) {
	case LevelDebug:
		l.Debug("%s", entry.Message)
	case LevelInfo:
		l.Info("%s", entry.Message)
	case LevelWarn:
		l.Warn("%s", entry.Message)
	default:
		l.Error("%s", entry.Message)
	}
	return nil
}

func (z *zapBridge) Sync() error {
	return nil
}

func fromZapLevel(level zapcore.Level) LogLevel {
	switch {
	case level < zapcore.InfoLevel:
		return LevelDebug
	case level == zapcore.InfoLevel:
		return LevelInfo
	case level == zapcore.WarnLevel:
		return LevelWarn
	default:
		return LevelError
	}
}

func fieldsToMap(fields []zapcore.Field) map[string]interface{} {
	enc := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(enc)
	}
	return enc.Fields
}

// ToZap returns a zap.Logger instance that will output to the provided logger
func ToZap(logger Logger) *zap.Logger {
	return zap.New(&zapBridge{logger: logger})
}
