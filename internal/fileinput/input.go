package fileinput

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jcorbin/goforth/internal/runeio"
)

// Location names an a line in an Input file.
type Location struct {
	Name string
	Line int
}

// Line combines a Location along with a bytes.Buffer for handling it.
type Line struct {
	Location
	bytes.Buffer
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }
func (il Line) String() string      { return fmt.Sprintf("%v %q", il.Location, il.Buffer.String()) }

var errDoubleUnread = errors.New("fileinput: only one rune may be unread")

// Input implements sequential rune reading through a Queue of one or more
// input streams, falling through to the next stream once each is exhausted.
// Both the current and last scanned lines are tracked to facilitate user
// feedback.
//
// A single rune may be pushed back with UnreadRune; a pushed back rune is
// not tracked again when re-read.
type Input struct {
	src   io.Reader
	rr    io.RuneReader
	Queue []io.Reader
	Last  Line
	Scan  Line

	unread   bool
	unreadR  rune
	unreadN  int
	lastRead rune
	lastN    int
}

// ReadRune reads one rune from the current input stream, appending it into the
// current Scan line, and rolling Scan over to Last after line feed.
// A stream that does not end with a line feed reads as though it did.
// Returns io.EOF only after every queued stream has been exhausted.
func (in *Input) ReadRune() (rune, int, error) {
	if in.unread {
		in.unread = false
		in.lastRead, in.lastN = in.unreadR, in.unreadN
		return in.unreadR, in.unreadN, nil
	}

	for {
		if in.rr == nil && !in.nextIn() {
			return 0, 0, io.EOF
		}

		r, n, err := in.rr.ReadRune()
		if n > 0 {
			if r == '\n' {
				in.nextLine()
			} else {
				in.Scan.WriteRune(r)
			}
			in.lastRead, in.lastN = r, n
			return r, n, nil
		}
		if err == io.EOF {
			// a stream that ends mid-line still ends its line, so that tokens
			// and lines never join across streams
			partial := in.Scan.Len() > 0
			in.closeIn()
			if partial {
				in.lastRead, in.lastN = '\n', 1
				return '\n', 1, nil
			}
			continue
		}
		if err == nil {
			err = io.ErrNoProgress
		}
		return 0, 0, err
	}
}

// UnreadRune pushes back the last rune read, so that the next ReadRune
// returns it again.
func (in *Input) UnreadRune() error {
	if in.unread || in.lastN == 0 {
		return errDoubleUnread
	}
	in.unread = true
	in.unreadR, in.unreadN = in.lastRead, in.lastN
	in.lastN = 0
	return nil
}

// Final returns true if the current stream is the last queued one; typically
// the interactive stream that follows any prelude or source files.
func (in *Input) Final() bool { return len(in.Queue) == 0 }

// Location returns the current scan location.
func (in *Input) Location() Location { return in.Scan.Location }

// Close closes the current stream and any remaining queued streams that
// implement io.Closer.
func (in *Input) Close() (err error) {
	in.closeIn()
	for _, r := range in.Queue {
		if cl, ok := r.(io.Closer); ok {
			if cerr := cl.Close(); err == nil {
				err = cerr
			}
		}
	}
	in.Queue = nil
	return err
}

func (in *Input) nextLine() {
	in.Last.Reset()
	in.Last.Name = in.Scan.Name
	in.Last.Line = in.Scan.Line
	in.Last.Write(in.Scan.Bytes())
	in.Scan.Reset()
	in.Scan.Line++
}

func (in *Input) closeIn() {
	if in.rr != nil {
		if in.Scan.Len() > 0 {
			in.nextLine()
		}
		if cl, ok := in.src.(io.Closer); ok {
			cl.Close()
		}
		in.src, in.rr = nil, nil
	}
}

func (in *Input) nextIn() bool {
	in.closeIn()
	if len(in.Queue) > 0 {
		r := in.Queue[0]
		in.Queue = in.Queue[1:]
		in.src, in.rr = r, runeio.NewReader(r)
		in.Scan.Name = nameOf(r)
		in.Scan.Line = 1
	}
	return in.rr != nil
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}
