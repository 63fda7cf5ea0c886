// Package debug writes pipeline tracing when NETVIEW_DEBUG is set:
//
//	NETVIEW_DEBUG=1 netview -config net.yaml
//
// Messages go to stderr, or to the file passed to SetOutput while the
// terminal UI owns the screen. With NETVIEW_DEBUG unset every call is a
// no-op.
package debug

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

var (
	enabled atomic.Bool

	mu     sync.Mutex
	logger = newLogger(os.Stderr)
)

func init() {
	enabled.Store(os.Getenv("NETVIEW_DEBUG") != "")
}

func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          "debug",
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Level:           log.DebugLevel,
	})
}

// Enabled reports whether tracing is on.
func Enabled() bool { return enabled.Load() }

// SetEnabled overrides NETVIEW_DEBUG, mainly for tests.
func SetEnabled(e bool) { enabled.Store(e) }

// SetOutput redirects tracing to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = newLogger(w)
	mu.Unlock()
}

func current() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes a printf-style trace line.
func Log(format string, args ...any) {
	if !Enabled() {
		return
	}
	current().Debugf(format, args...)
}

// LogTiming records how long op took.
func LogTiming(op string, d time.Duration) {
	if !Enabled() {
		return
	}
	current().Debug("timing", "op", op, "took", d.Round(time.Microsecond))
}

// Since is LogTiming measured from start, for use with defer:
//
//	defer debug.Since("reload", time.Now())
func Since(op string, start time.Time) {
	LogTiming(op, time.Since(start))
}
