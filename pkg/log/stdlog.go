package log

import (
	stdlog "log"
	"strings"
)

// RedirectStdLog routes the standard library's global logger through l at
// info level. Pebble and other dependencies log via the stdlib by default.
func RedirectStdLog(l Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdWriter{l: l})
}

// ToStdLogger returns a *log.Logger whose output is forwarded to l, for
// libraries that require the stdlib type.
func ToStdLogger(l Logger) *stdlog.Logger {
	return stdlog.New(stdWriter{l: l}, "", 0)
}

type stdWriter struct{ l Logger }

func (w stdWriter) Write(p []byte) (int, error) {
	w.l.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
