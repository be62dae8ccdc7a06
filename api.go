package main

import (
	"context"
	"errors"
	"io"

	"github.com/jcorbin/goforth/internal/panicerr"
)

// New creates a VM configured by the given options; the dictionary is built
// when it first runs.
func New(opts ...VMOption) *VM {
	var vm VM
	defaultOptions.apply(&vm)
	if opt := VMOptions(opts...); opt != nil {
		opt.apply(&vm)
	}
	return &vm
}

// Run runs the VM until its input is exhausted, the bye word is executed,
// the context is done, or a fatal fault occurs. Recoverable faults are
// reported on the VM's output, and do not stop it. Returns nil after a
// normal stop.
func (vm *VM) Run(ctx context.Context) error {
	err := panicerr.Recover("VM", func() error {
		return vm.run(ctx)
	})
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var halted haltError
	if errors.As(err, &halted) {
		err = halted.error
	}
	return err
}

// Close closes any input, and any closers attached by options.
func (vm *VM) Close() error { return vm.core.Close() }

// Stats reports arena usage.
type Stats struct {
	Here    int
	Cap     int
	Entries int
}

// Stats returns arena and dictionary usage; all zero before the VM has run.
func (vm *VM) Stats() (st Stats) {
	if vm.arena != nil {
		st.Here = vm.arena.Here()
		st.Cap = vm.arena.Cap()
		st.Entries = vm.dict.Len()
	}
	return st
}

// Dump writes a description of the VM's dictionary, compiled threads, and
// stacks.
func (vm *VM) Dump(w io.Writer) {
	vmDumper{vm: vm, out: w}.dump()
}

func WithInput(r io.Reader) VMOption      { return withInput(r) }
func WithOutput(w io.Writer) VMOption     { return withOutput(w) }
func WithTee(w io.Writer) VMOption        { return withTee(w) }
func WithArenaSize(n int) VMOption        { return withArenaSize(n) }
func WithStackDepth(n int) VMOption       { return withStackDepth(n) }
func WithReturnStackDepth(n int) VMOption { return withRStackDepth(n) }
func WithAck(enabled bool) VMOption       { return withAck(enabled) }
func WithPrelude(enabled bool) VMOption   { return withPrelude(enabled) }

func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }
