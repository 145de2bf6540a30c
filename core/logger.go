package core

// Logger is any leveled logger that can also report errors to an external
// service. Extra args may carry errors or context values; implementations
// decide how to render them.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
