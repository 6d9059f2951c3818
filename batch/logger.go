package batch

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the logging interface used by Batch and the packages built on
// it. Messages use fmt.Sprintf formatting. The logging package provides a
// zap-backed implementation.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// NoOpLogger discards all log messages. It is the default when no Logger is
// set.
type NoOpLogger struct{}

// Debug implements the Logger interface.
func (*NoOpLogger) Debug(string, ...interface{}) {}

// Info implements the Logger interface.
func (*NoOpLogger) Info(string, ...interface{}) {}

// Warn implements the Logger interface.
func (*NoOpLogger) Warn(string, ...interface{}) {}

// Error implements the Logger interface.
func (*NoOpLogger) Error(string, ...interface{}) {}
