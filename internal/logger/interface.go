package logger

import "codeberg.org/mutker/ampurr/internal/errors"

// Logger is the logging surface handed to services.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	ErrorWithCode(err errors.Error) *LogEvent
}
