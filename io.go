package main

import (
	"io"
	"strings"
	"unicode"
)

const maxTokenLen = 255

const commentMarker = '\\'

// scan reads the next whitespace delimited token; the delimiter that ends it
// is pushed back. A token starting with a backslash comments out the rest of
// its line. Halts at end of input.
func (vm *VM) scan() (token string) {
	var sb strings.Builder
	for {
		r := vm.readRune()
		if r == '\n' {
			vm.acknowledge()
		} else if r == commentMarker {
			vm.skipLine()
		} else if !unicode.IsSpace(r) {
			sb.WriteRune(r)
			break
		}
	}
	for {
		r, _, err := vm.Input.ReadRune()
		if err == io.EOF {
			break
		}
		vm.haltif(err)
		if unicode.IsSpace(r) {
			vm.unreadRune()
			break
		}
		sb.WriteRune(r)
		if sb.Len() > maxTokenLen {
			vm.halt(errTokenTooLong)
		}
	}

	token = sb.String()
	vm.token = token
	vm.logf("<", "scan %q from %v", token, vm.Input.Location())
	return token
}

// skipLine discards input up to, but not including, the next newline.
func (vm *VM) skipLine() {
	for {
		r, _, err := vm.Input.ReadRune()
		if err == io.EOF {
			return
		}
		vm.haltif(err)
		if r == '\n' {
			vm.unreadRune()
			return
		}
	}
}

// acknowledge writes " ok" after a line of interactive input has been fully
// consumed without fault.
func (vm *VM) acknowledge() {
	if vm.ack && vm.fault == nil && vm.Input.Final() {
		vm.writeString(" ok\n")
	}
}

//// output primitives

func (vm *VM) print() { vm.printf(" %d", vm.pop()) }

func (vm *VM) emit() { vm.writeRune(rune(vm.pop())) }

func (vm *VM) printStack() {
	vm.printf("<%d>", vm.stack.depth())
	for _, val := range vm.stack.vals {
		vm.printf(" %d", val)
	}
}

// tell writes the length prefixed text at the popped address.
func (vm *VM) tell() {
	s, err := vm.arena.Text(vm.pop())
	vm.memFault(err)
	vm.writeString(s)
}

//// input primitives

func (vm *VM) key() {
	if !vm.stack.room(1) {
		vm.abort(errStackOverflow)
	}
	vm.push(int(vm.readRune()))
}

// word scans the next token, which create will use to name a new entry.
func (vm *VM) word() { vm.scan() }

// bye halts normally.
func (vm *VM) bye() { vm.halt(nil) }
