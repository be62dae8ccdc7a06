// Package logio provides the leveled logging used by the goforth command,
// and a Writer that turns a byte stream into log lines.
package logio

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// Logger writes "LEVEL: message" lines to an output stream, remembering
// whether any error was logged so that the process can exit non-zero.
// A Logger with no output discards everything.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	buf      bytes.Buffer
	exitCode int
}

// SetOutput replaces the output stream.
func (lg *Logger) SetOutput(out io.Writer) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	lg.out = out
}

// ExitCode returns 0 if no error has been logged, 1 after Errorf, and 2 after
// ErrorIf or a failure to write output.
func (lg *Logger) ExitCode() int {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return lg.exitCode
}

// Leveledf returns a printf-style function that logs at the given level.
func (lg *Logger) Leveledf(level string) func(mess string, args ...interface{}) {
	return func(mess string, args ...interface{}) { lg.Printf(level, mess, args...) }
}

// Writer returns a Writer that logs each line written to it at the given
// level; it should be closed to flush any final partial line.
func (lg *Logger) Writer(level string) *Writer {
	return &Writer{Logf: lg.Leveledf(level)}
}

// ErrorIf logs any non-nil error, setting the exit code to 2.
func (lg *Logger) ErrorIf(err error) {
	if err != nil {
		lg.mu.Lock()
		defer lg.mu.Unlock()
		lg.reportError(err)
	}
}

// Errorf logs at the "ERROR" level, setting the exit code to 1 unless a
// higher code is already set.
func (lg *Logger) Errorf(mess string, args ...interface{}) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	if err := lg.printf("ERROR", mess, args...); err != nil {
		lg.reportError(err)
	}
	if lg.exitCode < 1 {
		lg.exitCode = 1
	}
}

// Printf writes a "level: message\n" line; an empty level omits the prefix.
func (lg *Logger) Printf(level, mess string, args ...interface{}) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	if err := lg.printf(level, mess, args...); err != nil {
		lg.reportError(err)
	}
}

func (lg *Logger) printf(level, mess string, args ...interface{}) error {
	if lg.out == nil {
		return nil
	}
	lg.buf.Reset()
	if level != "" {
		lg.buf.WriteString(level)
		lg.buf.WriteString(": ")
	}
	if len(args) > 0 {
		fmt.Fprintf(&lg.buf, mess, args...)
	} else {
		lg.buf.WriteString(mess)
	}
	if b := lg.buf.Bytes(); len(b) == 0 || b[len(b)-1] != '\n' {
		lg.buf.WriteByte('\n')
	}
	_, err := lg.buf.WriteTo(lg.out)
	return err
}

// reportError makes one attempt to log err, since the output itself may be
// what failed.
func (lg *Logger) reportError(err error) {
	lg.exitCode = 2
	lg.printf("ERROR", "%+v", err)
}
