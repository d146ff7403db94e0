// Package logging provides leveled log output shared by the loaders, the
// session, the HTTP server and the command line.
package logging

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

type ModeFlag uint32

const (
	DebugMode ModeFlag = iota
	InfoMode
	WarningMode
	ErrorMode
	CriticalMode
	SilentMode
)

var modeNames = map[string]ModeFlag{
	"debug":    DebugMode,
	"info":     InfoMode,
	"warning":  WarningMode,
	"error":    ErrorMode,
	"critical": CriticalMode,
	"silent":   SilentMode,
}

// Logger provides a way for the application to log messages at different severities.
type Logger interface {
	// Debugf formats its arguments analogous to fmt.Printf and records the text as a log
	// message at Debug level.
	Debugf(format string, args ...interface{})

	// Infof is like Debugf, but at Info level.
	Infof(format string, args ...interface{})

	// Warningf is like Debugf, but at Warning level.
	Warningf(format string, args ...interface{})

	// Errorf is like Debugf, but at Error level.
	Errorf(format string, args ...interface{})

	// Criticalf is like Debugf, but at Critical level.
	Criticalf(format string, args ...interface{})

	// Shutdown makes sure logs are closed.
	Shutdown()
}

var (
	mode atomic.Uint32

	mu     sync.RWMutex
	logger Logger = newStdLogger(os.Stderr, nil)
)

func init() {
	mode.Store(uint32(InfoMode))
}

// SetLogMode sets the severity required for a log message to be printed.
// For example, SetLogMode(WarningMode) will log any calls using
// Warningf, Errorf, or Criticalf.  To turn off all logging, use SilentMode.
func SetLogMode(newMode ModeFlag) {
	mode.Store(uint32(newMode))
}

// Mode returns the current severity threshold.
func Mode() ModeFlag {
	return ModeFlag(mode.Load())
}

// ParseMode maps "debug", "info", ... "silent" to a ModeFlag.
func ParseMode(s string) (ModeFlag, bool) {
	m, ok := modeNames[s]
	return m, ok
}

// SetLogger replaces the package logger and returns the previous one.
func SetLogger(l Logger) Logger {
	mu.Lock()
	defer mu.Unlock()
	prev := logger
	logger = l
	return prev
}

// SetOutput sends log messages to w without rotation.
func SetOutput(w io.Writer) Logger {
	return SetLogger(newStdLogger(w, nil))
}

func current() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func enabled(m ModeFlag) bool {
	return Mode() <= m
}

func Debugf(format string, args ...interface{}) {
	if enabled(DebugMode) {
		current().Debugf(format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	if enabled(InfoMode) {
		current().Infof(format, args...)
	}
}

func Warningf(format string, args ...interface{}) {
	if enabled(WarningMode) {
		current().Warningf(format, args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if enabled(ErrorMode) {
		current().Errorf(format, args...)
	}
}

func Criticalf(format string, args ...interface{}) {
	if enabled(CriticalMode) {
		current().Criticalf(format, args...)
	}
}

// Shutdown closes the package logger's file, if any.
func Shutdown() {
	current().Shutdown()
}

// TimeLog adds elapsed time to logging.
// Example:
//
//	mylog := NewTimeLog()
//	...
//	mylog.Debugf("stuff happened")  // Appends elapsed time from NewTimeLog() to message.
type TimeLog struct {
	start time.Time
}

func NewTimeLog() TimeLog {
	return TimeLog{time.Now()}
}

func (t TimeLog) Debugf(format string, args ...interface{}) {
	Debugf(format+": %s", append(args, time.Since(t.start))...)
}

func (t TimeLog) Infof(format string, args ...interface{}) {
	Infof(format+": %s", append(args, time.Since(t.start))...)
}

func (t TimeLog) Warningf(format string, args ...interface{}) {
	Warningf(format+": %s", append(args, time.Since(t.start))...)
}

func (t TimeLog) Errorf(format string, args ...interface{}) {
	Errorf(format+": %s", append(args, time.Since(t.start))...)
}
