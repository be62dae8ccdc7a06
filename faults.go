package main

import (
	"errors"
	"fmt"

	"github.com/jcorbin/goforth/internal/dict"
	"github.com/jcorbin/goforth/internal/mem"
)

// Recoverable faults, reported to the user before abandoning the rest of the
// current input line.
var (
	errStackEmpty    = errors.New("stack empty")
	errStackOverflow = errors.New("stack overflow")
	errDivZero       = errors.New("division by zero")
	errUnknownWord   = errors.New("unknown word")
	errCompileOnly   = errors.New("compile-only word")
	errNoCompile     = errors.New("word not allowed while compiling")
	errDictFull      = errors.New("dictionary full")
	errRetOverflow   = errors.New("return stack overflow")
	errRetEmpty      = errors.New("return stack empty")
	errBadAddr       = errors.New("invalid address")
	errBadWord       = errors.New("invalid word reference")
	errBadThread     = errors.New("invalid thread address")
	errBadDepth      = errors.New("invalid return stack depth")
	errNoLatest      = errors.New("no word defined")
)

// Fatal faults.
var (
	errTokenTooLong = fmt.Errorf("token longer than %v bytes", maxTokenLen)
	errNoQuit       = errors.New("bootstrap did not define quit")
)

// userFault is raised by panicking, and recovered by the top level loop,
// which records it for report and recovery by the outer interpreter.
type userFault struct {
	error
	token string
}

func (uf userFault) Unwrap() error { return uf.error }

func (uf userFault) Error() string {
	if uf.token != "" {
		return fmt.Sprintf("%v (token: %q)", uf.error, uf.token)
	}
	return uf.error.Error()
}

type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}
func (err haltError) Unwrap() error { return err.error }

type opError int

func (op opError) Error() string { return fmt.Sprintf("invalid primitive op %v", int(op)) }

// abort raises a recoverable fault attributed to the last scanned token.
func (vm *VM) abort(err error) {
	vm.logf("!", "fault: %v token:%q", err, vm.token)
	panic(userFault{err, vm.token})
}

// memFault raises errBadAddr for any invalid memory access caused by a user
// supplied address, errDictFull for arena exhaustion, or halts on any other
// error.
func (vm *VM) memFault(err error) {
	var fault mem.Fault
	var full mem.CapacityError
	switch {
	case err == nil:
	case errors.As(err, &fault):
		vm.abort(errBadAddr)
	case errors.As(err, &full):
		vm.abort(errDictFull)
	default:
		vm.halt(err)
	}
}

// wordFault raises errBadWord for a user supplied address that is not a
// dictionary entry, or halts on any other error.
func (vm *VM) wordFault(err error) {
	var iee dict.InvalidEntryError
	if errors.As(err, &iee) {
		vm.abort(errBadWord)
	}
	vm.haltif(err)
}
