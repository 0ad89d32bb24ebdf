package merge

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

// LogWriters groups the three logging streams of the merge package.
type LogWriters struct {
	Ops   io.Writer // aborted passes, observer failures
	Diag  io.Writer // one summary line per pass
	Trace io.Writer // one line per merge or closing
}

// SetLogWriters configures the logging streams. Nil writers disable a stream.
func SetLogWriters(w LogWriters) {
	logMu.Lock()
	defer logMu.Unlock()
	opsLogger = newLogger("[merge] ", w.Ops)
	diagLogger = newLogger("[merge] ", w.Diag)
	traceLogger = newLogger("[merge] ", w.Trace)
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

func opsf(format string, args ...interface{})   { logf(&opsLogger, format, args...) }
func diagf(format string, args ...interface{})  { logf(&diagLogger, format, args...) }
func tracef(format string, args ...interface{}) { logf(&traceLogger, format, args...) }
