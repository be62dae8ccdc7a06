// Package flushio provides output streams that buffer until flushed, so
// that a VM may write freely and flush only when it waits on input or
// halts.
package flushio

import (
	"bufio"
	"io"
	"io/ioutil"
)

// WriteFlusher is a flush-able io.Writer.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

// NewWriteFlusher returns w if it is already a WriteFlusher. In-memory
// buffers, like bytes.Buffer or strings.Builder, and ioutil.Discard are
// wrapped with a no-op Flush; any other writer gets a bufio.Writer.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	switch impl := w.(type) {
	case nil:
		return nopFlusher{ioutil.Discard}
	case WriteFlusher:
		return impl
	case buffer:
		return nopFlusher{w}
	}
	if w == ioutil.Discard {
		return nopFlusher{w}
	}
	return bufio.NewWriter(w)
}

type buffer interface {
	io.Writer
	Len() int
	Reset()
}

type nopFlusher struct{ io.Writer }

func (nf nopFlusher) Flush() error { return nil }

// WriteFlushers combines any number of WriteFlushers into one that writes to
// and flushes every one of them, in order. Nested combinations are
// flattened, and nils are skipped.
func WriteFlushers(wfs ...WriteFlusher) WriteFlusher {
	var all writeFlushers
	for _, wf := range wfs {
		if many, ok := wf.(writeFlushers); ok {
			all = append(all, many...)
		} else if wf != nil {
			all = append(all, wf)
		}
	}
	switch len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	default:
		return all
	}
}

type writeFlushers []WriteFlusher

func (wfs writeFlushers) Write(p []byte) (n int, err error) {
	for _, wf := range wfs {
		n, err = wf.Write(p)
		if err == nil && n != len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return n, err
		}
	}
	return len(p), nil
}

// Flush flushes every writer, returning the first error.
func (wfs writeFlushers) Flush() (err error) {
	for _, wf := range wfs {
		if ferr := wf.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}
