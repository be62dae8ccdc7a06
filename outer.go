package main

import (
	"errors"
	"strconv"

	"github.com/jcorbin/goforth/internal/dict"
	"github.com/jcorbin/goforth/internal/runeio"
)

// interpret handles one token of input: any pending fault is recovered from
// first, then the next token is either executed or compiled.
func (vm *VM) interpret() {
	if vm.fault != nil {
		vm.recoverFault()
	}
	vm.interpretToken(vm.scan())
}

// interpretToken executes or compiles a single token according to the
// current mode:
// - words are compiled as calls, unless interpreting or the word is
//   immediate, in which case they are invoked now
// - numbers are compiled as literals, or pushed when interpreting
// - anything else is an unknown word
func (vm *VM) interpretToken(token string) {
	if e := vm.lookup(token); e != 0 {
		h := vm.header(e)
		if vm.compiling && h.Flags&dict.Immediate == 0 {
			vm.compile(int(e))
			return
		}
		vm.checkMode(h.Flags)
		vm.invoke(e, h)
		return
	}

	if val, ok := parseNumber(token); ok {
		if vm.compiling {
			vm.compile(int(vm.ops[opLit]), val)
		} else {
			vm.push(val)
		}
		return
	}

	vm.abort(errUnknownWord)
}

func (vm *VM) checkMode(flags dict.Flag) {
	if !vm.compiling && flags&dict.CompileOnly != 0 {
		vm.abort(errCompileOnly)
	}
	if vm.compiling && flags&dict.NoCompile != 0 {
		vm.abort(errNoCompile)
	}
}

func (vm *VM) lookup(token string) dict.Entry {
	e, err := vm.dict.Lookup(token, vm.dict.Latest())
	vm.haltif(err)
	return e
}

// compile appends cells to the thread under construction.
func (vm *VM) compile(vals ...int) {
	for _, val := range vals {
		_, err := vm.arena.AppendCell(val)
		vm.memFault(err)
	}
}

// parseNumber parses a decimal integer, or a character literal like 'a' or
// a control mnemonic like <ESC>.
func parseNumber(token string) (int, bool) {
	if n, err := strconv.ParseInt(token, 10, strconv.IntSize); err == nil {
		return int(n), true
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	if r, err := runeio.UnquoteRune(token); err == nil {
		return int(r), true
	}
	return 0, false
}

// recoverFault reports the pending fault, discards the rest of the input
// line, abandons any partial definition, and returns to interpreting.
func (vm *VM) recoverFault() {
	uf := vm.fault
	vm.fault = nil

	vm.logf("!", "recover from %v at %v", uf, vm.Input.Location())
	vm.printf("  error: %v\n", uf.error)
	if uf.token != "" {
		vm.printf("  token: %v\n", uf.token)
	}

	vm.discardLine()

	if e := vm.defining; e != 0 {
		vm.defining = 0
		if e == vm.dict.Latest() {
			vm.logf("!", "drop partial definition of %q", vm.nameOf(e))
			vm.haltif(vm.dict.Drop(e))
		}
	}
	vm.compiling = false
}

func (vm *VM) discardLine() {
	for vm.readRune() != '\n' {
	}
}
