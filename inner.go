package main

import (
	"context"

	"github.com/jcorbin/goforth/internal/dict"
	"github.com/jcorbin/goforth/internal/mem"
)

// exec runs threaded code from ip until the outermost thread returns,
// leaving ip zero.
func (vm *VM) exec(ctx context.Context) {
	if vm.logfn != nil {
		defer vm.withLogPrefix("	")()
	}
	for vm.ip != 0 {
		vm.step()
		vm.haltif(ctx.Err())
	}
}

// step fetches one thread cell, decodes it as a dictionary entry, and
// invokes it; thread control primitives like lit and branch consume their
// operand cells by advancing ip themselves.
func (vm *VM) step() {
	at := vm.ip
	e := vm.fetchEntry()
	h := vm.header(e)
	if vm.logfn != nil {
		vm.logf(">", "exec @%v %v -- r:%v s:%v", at, vm.nameOf(e), vm.rstack.vals, vm.stack.vals)
	}
	vm.invoke(e, h)
}

// invoke runs a primitive directly, or enters a compiled thread.
func (vm *VM) invoke(e dict.Entry, h dict.Header) {
	if op, isPrim := h.Behavior.Primitive(); isPrim {
		if op <= opNone || op >= opMax {
			vm.halt(opError(op))
		}
		primitives[op].run(vm)
		return
	}
	body, _ := h.Behavior.Compiled()
	vm.call(body)
}

// call saves ip on the return stack and continues at body.
func (vm *VM) call(body int) {
	vm.rpush(vm.ip)
	vm.ip = body
}

// fetch reads the thread cell at ip and advances past it.
func (vm *VM) fetch() int {
	if err := vm.arena.Check(vm.ip, mem.CellSize, true, "fetch"); err != nil {
		vm.abort(errBadThread)
	}
	val, err := vm.arena.Load(vm.ip)
	vm.haltif(err)
	vm.ip += mem.CellSize
	return val
}

func (vm *VM) fetchEntry() dict.Entry {
	e, err := vm.dict.EntryAt(vm.fetch())
	vm.wordFault(err)
	return e
}

func (vm *VM) header(e dict.Entry) dict.Header {
	h, err := vm.dict.Header(e)
	vm.wordFault(err)
	return h
}

func (vm *VM) nameOf(e dict.Entry) string {
	name, err := vm.dict.Name(e)
	if err != nil {
		return "<invalid>"
	}
	return name
}

//// thread control

// exit returns to the calling thread, or ends execution when the return
// stack is empty.
func (vm *VM) exit() {
	if vm.rstack.depth() == 0 {
		vm.ip = 0
		return
	}
	vm.ip = vm.rpop()
}

func (vm *VM) lit() { vm.push(vm.fetch()) }

// branch adds the offset in the following cell to that cell's own address.
func (vm *VM) branch() {
	at := vm.ip
	vm.ip = at + vm.fetch()
}

// branch0 branches like branch if the popped value is zero, otherwise it
// skips the offset cell.
func (vm *VM) branch0() {
	flag := vm.pop()
	at := vm.ip
	off := vm.fetch()
	if flag == 0 {
		vm.ip = at + off
	}
}

// tick pushes the following thread cell, rather than executing it.
func (vm *VM) tick() { vm.push(vm.fetch()) }

// litstring pushes the address of the inline text that follows, and skips
// past it.
func (vm *VM) litstring() {
	at := vm.ip
	n := vm.fetch()
	size := mem.TextSize(n)
	if n < 0 || vm.arena.Check(at, size, true, "litstring") != nil {
		vm.abort(errBadThread)
	}
	vm.push(at)
	vm.ip = at + size
}

// execute invokes the popped entry, subject to the same mode restrictions
// that the outer interpreter imposes.
func (vm *VM) execute() {
	e, err := vm.dict.EntryAt(vm.pop())
	vm.wordFault(err)
	h := vm.header(e)
	vm.checkMode(h.Flags)
	vm.invoke(e, h)
}

// rspStore resets the return stack to an absolute depth, no deeper than it
// currently is.
func (vm *VM) rspStore() {
	n := vm.pop()
	if n < 0 || n > vm.rstack.depth() {
		vm.abort(errBadDepth)
	}
	vm.rstack.truncate(n)
}

func (vm *VM) toR() {
	vm.need(1)
	if !vm.rstack.room(1) {
		vm.abort(errRetOverflow)
	}
	vm.rpush(vm.pop())
}

func (vm *VM) fromR() {
	if !vm.stack.room(1) {
		vm.abort(errStackOverflow)
	}
	vm.push(vm.rpop())
}
