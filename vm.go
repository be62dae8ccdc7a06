package main

import (
	"context"
	"io"
	"strings"

	"github.com/jcorbin/goforth/internal/dict"
	"github.com/jcorbin/goforth/internal/mem"
)

// VM is a single interpreter context: one arena holding the dictionary and
// every compiled thread, a data stack, a return stack, and the outer
// interpreter's mode.
type VM struct {
	core

	arena *mem.Arena
	dict  *dict.Dictionary

	// The data stack holds operands for primitives; the return stack holds
	// instruction pointers to resume after a call returns.
	stack  stack
	rstack stack

	ip        int        // address of the next thread cell to execute
	compiling bool       // outer interpreter mode
	defining  dict.Entry // word under construction, dropped after a fault
	token     string     // last token scanned
	fault     *userFault // pending fault, reported before the next token

	ops      [opMax]dict.Entry // primitive entries, used to compile thread control
	quitBody int               // thread address of the top level loop

	arenaSize   int
	stackDepth  int
	rstackDepth int
	ack         bool
	prelude     bool
}

type stack struct {
	vals  []int
	limit int
}

func (s *stack) depth() int { return len(s.vals) }

func (s *stack) room(n int) bool { return s.limit == 0 || len(s.vals)+n <= s.limit }

func (s *stack) push(vals ...int) bool {
	if !s.room(len(vals)) {
		return false
	}
	s.vals = append(s.vals, vals...)
	return true
}

func (s *stack) pop() (int, bool) {
	i := len(s.vals) - 1
	if i < 0 {
		return 0, false
	}
	val := s.vals[i]
	s.vals = s.vals[:i]
	return val, true
}

func (s *stack) truncate(n int) { s.vals = s.vals[:n] }

func (vm *VM) push(vals ...int) {
	if !vm.stack.push(vals...) {
		vm.abort(errStackOverflow)
	}
}

func (vm *VM) pop() int {
	val, ok := vm.stack.pop()
	if !ok {
		vm.abort(errStackEmpty)
	}
	return val
}

// need faults unless the data stack holds at least n values, so that
// multi-operand primitives never partially consume the stack.
func (vm *VM) need(n int) {
	if vm.stack.depth() < n {
		vm.abort(errStackEmpty)
	}
}

func (vm *VM) pop2() (a, b int) {
	vm.need(2)
	b = vm.pop()
	a = vm.pop()
	return a, b
}

func (vm *VM) rpush(val int) {
	if !vm.rstack.push(val) {
		vm.abort(errRetOverflow)
	}
}

func (vm *VM) rpop() int {
	val, ok := vm.rstack.pop()
	if !ok {
		vm.abort(errRetEmpty)
	}
	return val
}

// init allocates the arena, compiles the builtin dictionary, and queues
// the prelude ahead of any other input; it is a no-op after the first call.
func (vm *VM) init(ctx context.Context) {
	if vm.arena != nil {
		return
	}
	vm.arena = mem.NewArena(vm.arenaSize)
	vm.dict = dict.New(vm.arena)
	vm.stack.limit = vm.stackDepth
	vm.rstack.limit = vm.rstackDepth

	vm.bootstrap(ctx)

	if vm.prelude {
		vm.Input.Queue = append([]io.Reader{
			NamedReader("prelude.fs", strings.NewReader(preludeSource)),
		}, vm.Input.Queue...)
	}
}

func (vm *VM) run(ctx context.Context) error {
	vm.init(ctx)
	for {
		vm.haltif(ctx.Err())
		vm.runQuit(ctx)
		vm.logf("#", "quit returned, restarting")
	}
}

// runQuit runs the top level loop until its thread returns, or until a user
// fault unwinds it; the fault is then left pending for the outer
// interpreter to report and recover from once the loop restarts. The data
// stack survives faults, except for overflow which empties it.
func (vm *VM) runQuit(ctx context.Context) {
	defer func() {
		if e := recover(); e != nil {
			uf, ok := e.(userFault)
			if !ok {
				panic(e)
			}
			vm.fault = &uf
			// quit needs room for its own operands
			if uf.error == errStackOverflow {
				vm.stack.truncate(0)
			}
		}
	}()
	vm.ip = vm.quitBody
	vm.exec(ctx)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
