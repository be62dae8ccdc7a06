package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jcorbin/goforth/internal/dict"
	"github.com/jcorbin/goforth/internal/mem"
)

type fmtBuf interface {
	Len() int
	Write(p []byte) (n int, err error)
	WriteByte(c byte) error
	WriteRune(r rune) (n int, err error)
	WriteString(s string) (n int, err error)
}

type vmDumper struct {
	vm  *VM
	out io.Writer

	addrWidth int
	words     []dict.Entry // oldest first

	// rawWords adds the raw cells of each compiled thread.
	rawWords bool
}

func (dump vmDumper) dump() {
	fmt.Fprintf(dump.out, "# VM Dump\n")
	if dump.vm.arena == nil {
		fmt.Fprintf(dump.out, "  uninitialized\n")
		return
	}

	mode := "interpret"
	if dump.vm.compiling {
		mode = "compile"
	}
	fmt.Fprintf(dump.out, "  ip: %v\n", dump.vm.ip)
	fmt.Fprintf(dump.out, "  mode: %v\n", mode)
	fmt.Fprintf(dump.out, "  here: %v/%v\n", dump.vm.arena.Here(), dump.vm.arena.Cap())
	fmt.Fprintf(dump.out, "  stack: %v\n", dump.vm.stack.vals)
	fmt.Fprintf(dump.out, "  rstack: %v\n", dump.vm.rstack.vals)

	dump.scanWords()
	dump.dumpWords()
}

func (dump *vmDumper) scanWords() {
	entries := dump.vm.dict.Entries()
	dump.words = make([]dict.Entry, len(entries))
	for i, e := range entries {
		dump.words[len(entries)-1-i] = e
	}
}

func (dump *vmDumper) dumpWords() {
	if dump.addrWidth == 0 {
		dump.addrWidth = len(strconv.Itoa(dump.vm.arena.Here()))
	}

	fmt.Fprintf(dump.out, "# Dictionary\n")
	var buf strings.Builder
	for i, e := range dump.words {
		end := dump.vm.arena.Here()
		if j := i + 1; j < len(dump.words) {
			end = int(dump.words[j])
		}
		dump.formatWord(&buf, e, end)
		buf.WriteByte('\n')
		io.WriteString(dump.out, buf.String())
		buf.Reset()
	}
}

func (dump *vmDumper) formatWord(buf fmtBuf, e dict.Entry, end int) {
	fmt.Fprintf(buf, "  @%*v : ", dump.addrWidth, int(e))

	h, err := dump.vm.dict.Header(e)
	if err != nil {
		fmt.Fprintf(buf, "<%v>", err)
		return
	}
	buf.WriteString(dump.vm.nameOf(e))
	if h.Flags != 0 {
		buf.WriteString(" [")
		buf.WriteString(h.Flags.String())
		buf.WriteByte(']')
	}
	if e == dump.vm.defining {
		buf.WriteString(" defining")
	}

	if op, isPrim := h.Behavior.Primitive(); isPrim {
		fmt.Fprintf(buf, " prim(%v)", op)
		return
	}

	body, _ := h.Behavior.Compiled()
	buf.WriteString(" =")
	for addr := body; addr < end; {
		buf.WriteByte(' ')
		addr = dump.formatCode(buf, addr, end)
	}

	if dump.rawWords {
		code := make([]int, (end-body)/mem.CellSize)
		if err := dump.vm.arena.LoadInto(body, code); err == nil {
			fmt.Fprintf(buf, "\n  %*v   %v", dump.addrWidth, "", code)
		}
	}
}

// formatCode decodes one thread cell, along with any operand cells, and
// returns the address after them.
func (dump *vmDumper) formatCode(buf fmtBuf, addr, end int) int {
	val, err := dump.vm.arena.Load(addr)
	if err != nil {
		buf.WriteString("?")
		return end
	}
	next := addr + mem.CellSize

	e, err := dump.vm.dict.EntryAt(val)
	if err != nil {
		buf.WriteString(strconv.Itoa(val))
		return next
	}

	operand := func() (int, bool) {
		if next >= end {
			return 0, false
		}
		arg, err := dump.vm.arena.Load(next)
		return arg, err == nil
	}

	name := dump.vm.nameOf(e)
	switch e {
	case dump.vm.ops[opLit]:
		if arg, ok := operand(); ok {
			fmt.Fprintf(buf, "%v(%v)", name, arg)
			return next + mem.CellSize
		}

	case dump.vm.ops[opBranch], dump.vm.ops[opBranch0]:
		if arg, ok := operand(); ok {
			fmt.Fprintf(buf, "%v(%+d)", name, arg/mem.CellSize)
			return next + mem.CellSize
		}

	case dump.vm.ops[opTick]:
		if arg, ok := operand(); ok {
			buf.WriteString(name)
			if ref, err := dump.vm.dict.EntryAt(arg); err == nil {
				buf.WriteString(dump.vm.nameOf(ref))
			} else {
				buf.WriteString(strconv.Itoa(arg))
			}
			return next + mem.CellSize
		}

	case dump.vm.ops[opLitString]:
		if s, err := dump.vm.arena.Text(next); err == nil && next+mem.TextSize(len(s)) <= end {
			fmt.Fprintf(buf, "%v(%q)", name, s)
			return next + mem.TextSize(len(s))
		}
	}

	buf.WriteString(name)
	return next
}
