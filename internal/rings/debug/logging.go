package debug

import (
	"io"
	"log"
	"sync"
)

var (
	logMu       sync.RWMutex
	opsLogger   *log.Logger
	diagLogger  *log.Logger
	traceLogger *log.Logger
)

// SetLogWriters configures the three logging streams for the debug package.
// Pass nil for any writer to disable that stream.
func SetLogWriters(ops, diag, trace io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	opsLogger = newLogger("[ringdebug] ", ops)
	diagLogger = newLogger("[ringdebug] ", diag)
	traceLogger = newLogger("[ringdebug] ", trace)
}

func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

func logf(l **log.Logger, format string, args ...interface{}) {
	logMu.RLock()
	lg := *l
	logMu.RUnlock()
	if lg != nil {
		lg.Printf(format, args...)
	}
}

// opsf logs render failures.
func opsf(format string, args ...interface{}) { logf(&opsLogger, format, args...) }

// diagf logs output locations and report summaries.
func diagf(format string, args ...interface{}) { logf(&diagLogger, format, args...) }

// tracef logs one line per rendered checkpoint.
func tracef(format string, args ...interface{}) { logf(&traceLogger, format, args...) }
