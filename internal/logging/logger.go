// Package logging provides the prefixed logger used throughout sonika.
package logging

import (
	"fmt"
	"log"

	"github.com/fatih/color"
)

// Logger writes prefixed lines through the standard log package, so it
// respects any flags or output set on that logger. A nil Logger is valid and
// discards everything. It is safe for concurrent use.
type Logger struct {
	// prefix is the dotted name of the logger.
	prefix string
	// debug enables Debug and Debugf output.
	debug bool
}

// New creates a root logger, from which all other loggers derive, with debug
// output enabled or disabled.
func New(debug bool) *Logger {
	return &Logger{debug: debug}
}

// Sublogger creates a new logger whose prefix extends this one with name.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}

	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}

	return &Logger{prefix: prefix, debug: l.debug}
}

// Prefix returns the dotted name of the logger.
func (l *Logger) Prefix() string {
	if l == nil {
		return ""
	}
	return l.prefix
}

// DebugEnabled reports whether debug output is enabled.
func (l *Logger) DebugEnabled() bool {
	return l != nil && l.debug
}

func (l *Logger) output(calldepth int, line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	log.Output(calldepth, line)
}

// Printf logs with semantics equivalent to fmt.Printf.
func (l *Logger) Printf(format string, v ...interface{}) {
	if l != nil {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Println logs with semantics equivalent to fmt.Println.
func (l *Logger) Println(v ...interface{}) {
	if l != nil {
		l.output(3, fmt.Sprintln(v...))
	}
}

// Debugf is Printf, but only when debugging is enabled.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.DebugEnabled() {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Warn logs err with a yellow warning prefix.
func (l *Logger) Warn(err error) {
	if l != nil {
		l.output(3, color.YellowString("Warning: %v", err))
	}
}

// Error logs err with a red error prefix.
func (l *Logger) Error(err error) {
	if l != nil {
		l.output(3, color.RedString("Error: %v", err))
	}
}
