package zap

import (
	"go.uber.org/zap"

	"github.com/arloliu/odbc/types"
)

// Logger implements types.Logger over a zap.SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
}

var _ types.Logger = (*Logger)(nil)

// New wraps a zap.Logger. A nil logger is replaced with zap.NewNop().
//
// Parameters:
//   - logger: The zap logger to write to
//
// Returns:
//   - *Logger: A types.Logger that forwards to logger
func New(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Logger{sugar: logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// NewSugared wraps an existing SugaredLogger as-is.
func NewSugared(sugar *zap.SugaredLogger) *Logger {
	return &Logger{sugar: sugar}
}

// Debug logs a message at debug level.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info logs a message at info level.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error logs a message at error level.
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Fatal logs a message at fatal level, then exits.
func (l *Logger) Fatal(msg string, keysAndValues ...any) {
	l.sugar.Fatalw(msg, keysAndValues...)
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
