// Package lineinput provides an interactive, line edited, io.Reader for use
// when standard input is a terminal.
package lineinput

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
)

// Prompter reads one edited line of input after displaying a prompt.
type Prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// Reader implements io.Reader by prompting for one line at a time, each of
// which is delivered with a trailing newline.
type Reader struct {
	Prompter
	Prompt string

	// HistoryFile, if set, is loaded by Open and saved by Close.
	HistoryFile string

	line    *liner.State
	pending strings.Reader
}

// Open creates a Reader backed by a liner terminal state; Ctrl-C abandons
// the current line rather than the session.
func Open(prompt, historyFile string) *Reader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	return &Reader{
		Prompter:    line,
		Prompt:      prompt,
		HistoryFile: historyFile,
		line:        line,
	}
}

// Name returns a name suitable for input diagnostics.
func (r *Reader) Name() string { return "<stdin>" }

// Read returns the remainder of the last prompted line, prompting for a new
// one once it has been consumed. An aborted prompt yields an empty line.
func (r *Reader) Read(p []byte) (int, error) {
	for r.pending.Len() == 0 {
		s, err := r.Prompter.Prompt(r.Prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			s, err = "", nil
		}
		if err != nil {
			return 0, err
		}
		if strings.TrimSpace(s) != "" {
			r.Prompter.AppendHistory(s)
		}
		r.pending.Reset(s + "\n")
	}
	return r.pending.Read(p)
}

// Close saves any history and restores the terminal.
func (r *Reader) Close() (err error) {
	if r.line == nil {
		return nil
	}
	if r.HistoryFile != "" {
		if f, ferr := os.Create(r.HistoryFile); ferr == nil {
			_, err = r.line.WriteHistory(f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		} else {
			err = ferr
		}
	}
	if cerr := r.line.Close(); err == nil {
		err = cerr
	}
	r.line = nil
	return err
}

var _ io.ReadCloser = (*Reader)(nil)
