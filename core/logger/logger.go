package logger

// Logger exposes logging methods for common severity levels.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	// Infow and Errorw log a message with structured fields.
	Infow(msg string, fields map[string]any)
	Errorw(msg string, fields map[string]any)
	// With derives a child logger carrying the given fields on every line.
	With(fields map[string]any) Logger
}
