// Package monitoring provides the process-wide diagnostic logging hooks for
// the pipeline. Stages log through Logf so tests can mute or capture output,
// and through Debugf for high-frequency per-frame telemetry that is off by
// default.
package monitoring

import (
	"io"
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

var (
	debugMu     sync.RWMutex
	debugLogger *log.Logger
)

// SetDebugWriter installs a debug logger that receives verbose per-frame
// diagnostics (queue evictions, match positions). Pass nil to disable.
func SetDebugWriter(w io.Writer) {
	debugMu.Lock()
	defer debugMu.Unlock()
	if w == nil {
		debugLogger = nil
		return
	}
	debugLogger = log.New(w, "", log.LstdFlags|log.Lmicroseconds)
}

// Debugf logs formatted debug messages when a debug writer is configured.
func Debugf(format string, args ...interface{}) {
	debugMu.RLock()
	l := debugLogger
	debugMu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}
