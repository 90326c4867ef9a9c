// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package agent

import (
	"log"
	"log/syslog"
)

// syslogWriter is the subset of *syslog.Writer a Logger needs, broken out
// so tests can supply a fake instead of dialing the real syslog daemon.
type syslogWriter interface {
	Emerg(string) error
	Alert(string) error
	Crit(string) error
	Err(string) error
	Warning(string) error
	Notice(string) error
	Info(string) error
	Debug(string) error
	Close() error
}

// Logger records daemon events at syslog severities, optionally echoing
// them to stdout for interactive debugging. The severity methods mirror
// syslog's own naming (emerg down to debug) rather than a generic leveled
// logger, since that's the vocabulary every log line in this daemon is
// triaged by.
type Logger struct {
	w     syslogWriter
	debug bool
}

// NewLogger opens a connection to the local syslog daemon under the given
// tag. debug additionally echoes every record to stdout via the standard
// log package, in the teacher's own log.Printf style.
func NewLogger(tag string, debug bool) (*Logger, error) {
	w, err := syslog.New(syslog.LOG_DAEMON, tag)
	if err != nil {
		return nil, err
	}
	return NewLoggerWithWriter(w, debug), nil
}

// NewLoggerWithWriter wraps an already-constructed syslog writer, letting
// callers (and tests) supply their own.
func NewLoggerWithWriter(w syslogWriter, debug bool) *Logger {
	return &Logger{w: w, debug: debug}
}

func (l *Logger) record(level string, f func(string) error, msg string) {
	f(msg)
	if l.debug {
		log.Printf("%s: %s", level, msg)
	}
}

func (l *Logger) Emerg(msg string)  { l.record("EMERG", l.w.Emerg, msg) }
func (l *Logger) Alert(msg string)  { l.record("ALERT", l.w.Alert, msg) }
func (l *Logger) Crit(msg string)   { l.record("CRIT", l.w.Crit, msg) }
func (l *Logger) Err(msg string)    { l.record("ERR", l.w.Err, msg) }
func (l *Logger) Warn(msg string)   { l.record("WARN", l.w.Warning, msg) }
func (l *Logger) Notice(msg string) { l.record("NOTICE", l.w.Notice, msg) }
func (l *Logger) Info(msg string)   { l.record("INFO", l.w.Info, msg) }
func (l *Logger) Debug(msg string)  { l.record("DBG", l.w.Debug, msg) }

// Close releases the underlying syslog connection.
func (l *Logger) Close() error { return l.w.Close() }
