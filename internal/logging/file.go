package logging

import (
	"io"
	"log"

	"github.com/natefinch/lumberjack"
)

// Config selects where log output goes. An empty Logfile keeps stderr.
type Config struct {
	Logfile string `yaml:"logfile" toml:"logfile"`
	MaxSize int    `yaml:"max_log_size" toml:"max_log_size"` // megabytes
	MaxAge  int    `yaml:"max_log_age" toml:"max_log_age"`   // days
	Verbose bool   `yaml:"verbose" toml:"verbose"`
}

// Apply sets the log mode and, when a log file is configured, installs a
// logger that writes to a rotating file.
func (c *Config) Apply() {
	if c == nil {
		return
	}
	if c.Verbose {
		SetLogMode(DebugMode)
	}
	if c.Logfile == "" {
		Debugf("Sending log messages to stderr since no log file specified.")
		return
	}
	l := &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize,
		MaxAge:   c.MaxAge,
	}
	SetLogger(newStdLogger(l, l))
	Infof("Sending log messages to: %s", c.Logfile)
}

type stdLogger struct {
	*log.Logger
	file *lumberjack.Logger
}

func newStdLogger(w io.Writer, file *lumberjack.Logger) stdLogger {
	return stdLogger{Logger: log.New(w, "", log.LstdFlags), file: file}
}

// Debugf formats its arguments analogous to fmt.Printf and records the text as a log
// message at Debug level.
func (slog stdLogger) Debugf(format string, args ...interface{}) {
	slog.Printf("   DEBUG "+format, args...)
}

// Infof is like Debugf, but at Info level.
func (slog stdLogger) Infof(format string, args ...interface{}) {
	slog.Printf("    INFO "+format, args...)
}

// Warningf is like Debugf, but at Warning level.
func (slog stdLogger) Warningf(format string, args ...interface{}) {
	slog.Printf(" WARNING "+format, args...)
}

// Errorf is like Debugf, but at Error level.
func (slog stdLogger) Errorf(format string, args ...interface{}) {
	slog.Printf("   ERROR "+format, args...)
}

// Criticalf is like Debugf, but at Critical level.
func (slog stdLogger) Criticalf(format string, args ...interface{}) {
	slog.Printf("CRITICAL "+format, args...)
}

func (slog stdLogger) Shutdown() {
	if slog.file != nil {
		slog.Printf("Closing log file...")
		slog.file.Close()
	}
}
