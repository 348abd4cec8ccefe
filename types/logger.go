package types

// Logger is the structured logging interface used throughout odbc.
//
// Messages are followed by alternating key/value pairs. The method set
// matches the "w" family of zap.SugaredLogger; contrib/logging/zap provides
// a ready-made adapter.
type Logger interface {
	// Debug logs a message at debug level.
	Debug(msg string, keysAndValues ...any)

	// Info logs a message at info level.
	Info(msg string, keysAndValues ...any)

	// Warn logs a message at warn level.
	Warn(msg string, keysAndValues ...any)

	// Error logs a message at error level.
	Error(msg string, keysAndValues ...any)

	// Fatal logs a message at fatal level. Implementations may exit.
	Fatal(msg string, keysAndValues ...any)
}
