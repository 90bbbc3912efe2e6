package logger

import (
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/ampurr/internal/errors"
	"github.com/rs/zerolog"
)

var log = zerolog.Nop()

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	Disabled LogLevel = 7
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// ParseLevel maps a configured level name onto a LogLevel.
func ParseLevel(name string) (LogLevel, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return DebugLevel, true
	case "info":
		return InfoLevel, true
	case "warn", "warning":
		return WarnLevel, true
	case "error":
		return ErrorLevel, true
	default:
		return WarnLevel, false
	}
}

// Init initializes the global logger. Output goes to stderr so that
// command output on stdout stays clean.
func Init(level LogLevel, isService bool) {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	if isService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	log = zerolog.New(output).With().Timestamp().Logger()

	SetLogLevel(level)
}

// Disable silences the global logger completely.
func Disable() {
	log = zerolog.Nop()
	SetLogLevel(Disabled)
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	zerolog.SetGlobalLevel(zerolog.Level(level))
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid()
}

// Debug logs a debug message
func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

// Info logs an info message
func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

// Warn logs a warning message
func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

func withCode(e *zerolog.Event, err errors.Error) *LogEvent {
	return &LogEvent{e.
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

// instance adapts a zerolog.Logger to the Logger interface. A nil logger
// means the package-level one, so Default keeps following Init.
type instance struct {
	l *zerolog.Logger
}

func (i instance) get() *zerolog.Logger {
	if i.l == nil {
		return &log
	}

	return i.l
}

func (i instance) Debug() *LogEvent { return &LogEvent{i.get().Debug()} }
func (i instance) Info() *LogEvent  { return &LogEvent{i.get().Info()} }
func (i instance) Warn() *LogEvent  { return &LogEvent{i.get().Warn()} }
func (i instance) Error() *LogEvent { return &LogEvent{i.get().Error()} }

func (i instance) ErrorWithCode(err errors.Error) *LogEvent {
	return withCode(i.get().Error(), err)
}

// Default returns a Logger backed by the global logger.
func Default() Logger {
	return instance{}
}

// New returns a standalone JSON Logger writing to w.
func New(w io.Writer) Logger {
	l := zerolog.New(w).With().Timestamp().Logger()
	return instance{l: &l}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	l := zerolog.Nop()
	return instance{l: &l}
}
