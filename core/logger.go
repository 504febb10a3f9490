package core

import (
	"log"
	"os"
)

// Logger is any service that can report application events.
// args may carry errors, map[string]interface{} extras and the acting Principal.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Principal identifies the authenticated caller attached to log entries.
type Principal struct {
	ID       string
	Username string
	Email    string
}

// StdLogger prints every entry, and the errors among its args, to a *log.Logger.
type StdLogger struct {
	std *log.Logger
}

var _ Logger = (*StdLogger)(nil)

func NewStdLogger(std *log.Logger) *StdLogger {
	return &StdLogger{std: std}
}

func (l *StdLogger) print(level, msg string, args []interface{}) {
	line := "[" + level + "] " + msg
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			line += " | " + err.Error()
		}
	}
	l.std.Println(line)
}

func (l *StdLogger) Debug(msg string, args ...interface{}) { l.print("DEBUG", msg, args) }
func (l *StdLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l *StdLogger) Warn(msg string, args ...interface{})  { l.print("WARNING", msg, args) }
func (l *StdLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }

func (l *StdLogger) Fatal(msg string, args ...interface{}) {
	l.print("CRITICAL", msg, args)
	os.Exit(1)
}
