package core

// Logger is any leveled logger the app and its services can report through.
// Implementations may inspect args for well-known types (eg. a logged-in user)
// before passing them along.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
