package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jcorbin/goforth/internal/fileinput"
	"github.com/jcorbin/goforth/internal/flushio"
	"github.com/jcorbin/goforth/internal/runeio"
)

// core holds the VM's character source, output stream, and logging.
type core struct {
	logging
	fileinput.Input
	out     flushio.WriteFlusher
	closers []io.Closer
}

func (c *core) Close() (err error) {
	if c.out != nil {
		err = c.out.Flush()
	}
	if cerr := c.Input.Close(); err == nil {
		err = cerr
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		if cerr := c.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	c.closers = nil
	return err
}

// halt stops the VM by panicking with a haltError, after flushing output;
// a nil or io.EOF error indicates a normal stop.
func (c *core) halt(err error) {
	// ignore any panics while trying to flush output
	func() {
		defer func() { recover() }()
		if c.out != nil {
			if ferr := c.out.Flush(); err == nil {
				err = ferr
			}
		}
	}()

	// ignore any panics while logging
	func() {
		defer func() { recover() }()
		if err == nil || err == io.EOF {
			c.logf("#", "halt")
		} else {
			c.logf("#", "halt error: %v", err)
		}
	}()

	if err == nil {
		err = io.EOF
	}
	panic(haltError{err})
}

func (c *core) haltif(err error) {
	if err != nil {
		c.halt(err)
	}
}

func (c *core) writeRune(r rune) {
	_, err := runeio.WriteANSIRune(c.out, r)
	c.haltif(err)
}

func (c *core) writeString(s string) {
	_, err := runeio.WriteANSIString(c.out, s)
	c.haltif(err)
}

func (c *core) printf(format string, args ...interface{}) {
	_, err := fmt.Fprintf(c.out, format, args...)
	c.haltif(err)
}

// readRune flushes output, then reads the next input rune, halting at the
// end of all input.
func (c *core) readRune() rune {
	c.haltif(c.out.Flush())
	r, _, err := c.Input.ReadRune()
	c.haltif(err)
	return r
}

func (c *core) unreadRune() {
	c.haltif(c.Input.UnreadRune())
}

type logging struct {
	logfn func(mess string, args ...interface{})

	markWidth int
}

func (log *logging) withLogPrefix(prefix string) func() {
	logfn := log.logfn
	log.logfn = func(mess string, args ...interface{}) {
		logfn(prefix+mess, args...)
	}
	return func() {
		log.logfn = logfn
	}
}

func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		for _, r := range mark {
			mark = strings.Repeat(string(r), n) + mark
			break
		}
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}

// NamedReader attaches a name to an io.Reader, used to label input in
// diagnostics.
func NamedReader(name string, r io.Reader) io.Reader {
	return namedReader{r, name}
}

type namedReader struct {
	io.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }
