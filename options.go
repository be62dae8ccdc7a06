package main

import (
	"io"
	"io/ioutil"

	"github.com/jcorbin/goforth/internal/flushio"
)

// VMOption configures a VM; options are applied in order, before the VM
// first runs.
type VMOption interface{ apply(vm *VM) }

const (
	defaultArenaSize   = 64 * 1024
	defaultStackDepth  = 1024
	defaultRStackDepth = 1024
)

var defaultOptions = VMOptions(
	withArenaSize(defaultArenaSize),
	withStackDepth(defaultStackDepth),
	withRStackDepth(defaultRStackDepth),
	withPrelude(true),
	withOutput(ioutil.Discard),
)

// VMOptions combines any number of options into one.
func VMOptions(opts ...VMOption) VMOption {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, impl)
		}
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

type options []VMOption

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		opt.apply(vm)
	}
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) {
	vm.logfn = logfn
}

type inputOption struct{ io.Reader }
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type arenaSizeOption int
type stackDepthOption int
type rstackDepthOption int
type ackOption bool
type preludeOption bool

func withInput(r io.Reader) inputOption       { return inputOption{r} }
func withOutput(w io.Writer) outputOption     { return outputOption{w} }
func withTee(w io.Writer) teeOption           { return teeOption{w} }
func withArenaSize(n int) arenaSizeOption     { return arenaSizeOption(n) }
func withStackDepth(n int) stackDepthOption   { return stackDepthOption(n) }
func withRStackDepth(n int) rstackDepthOption { return rstackDepthOption(n) }
func withAck(enabled bool) ackOption          { return ackOption(enabled) }
func withPrelude(enabled bool) preludeOption  { return preludeOption(enabled) }

func (i inputOption) apply(vm *VM) {
	vm.Input.Queue = append(vm.Input.Queue, i.Reader)
}

func (o outputOption) apply(vm *VM) {
	if vm.out != nil {
		vm.out.Flush()
	}
	vm.out = flushio.NewWriteFlusher(o.Writer)
}

func (o teeOption) apply(vm *VM) {
	vm.out = flushio.WriteFlushers(vm.out, flushio.NewWriteFlusher(o.Writer))
	if cl, ok := o.Writer.(io.Closer); ok {
		vm.closers = append(vm.closers, cl)
	}
}

func (n arenaSizeOption) apply(vm *VM)   { vm.arenaSize = int(n) }
func (n stackDepthOption) apply(vm *VM)  { vm.stackDepth = int(n) }
func (n rstackDepthOption) apply(vm *VM) { vm.rstackDepth = int(n) }
func (b ackOption) apply(vm *VM)         { vm.ack = bool(b) }
func (b preludeOption) apply(vm *VM)     { vm.prelude = bool(b) }
