package main

import (
	"unicode/utf8"

	"github.com/jcorbin/goforth/internal/dict"
	"github.com/jcorbin/goforth/internal/mem"
)

// Primitive operation numbers; each is stored in the code field of its
// dictionary entry. Zero is reserved to mean "compiled".
const (
	opNone = iota

	// thread control
	opExit
	opLit
	opBranch
	opBranch0
	opTick
	opLitString
	opExecute

	// arithmetic and logic
	opAdd
	opSub
	opMul
	opDiv
	opMod
	opEq
	opLess
	opGreater
	opAnd
	opOr
	opXor
	opInvert

	// stacks
	opDup
	opDrop
	opSwap
	opPick
	opDepth
	opClr
	opPrintStack
	opToR
	opFromR

	// memory
	opHere
	opComma
	opCharComma
	opXCharComma
	opFetch
	opStore
	opCharFetch
	opCharStore
	opAligned
	opCell

	// dictionary and compiler
	opWord
	opCreate
	opLatest
	opHidden
	opImmediate
	opCompileOnly
	opInterpretOnly
	opRecursive
	opState
	opLbrac
	opRbrac

	// input and output
	opPrint
	opEmit
	opKey
	opTell
	opBye

	// internal words, hidden once bootstrap is complete
	opInterpret
	opRspStore
	opHiddenSet
	opHiddenClr
	opLbracInternal

	opMax
)

type primitive struct {
	name  string
	flags dict.Flag
	run   func(vm *VM)
}

var primitives [opMax]primitive

// internalOps are only referenced by bootstrap definitions.
var internalOps = []int{
	opInterpret,
	opRspStore,
	opHiddenSet,
	opHiddenClr,
	opLbracInternal,
}

func init() {
	const (
		imm = dict.Immediate
		co  = dict.CompileOnly
	)
	primitives = [opMax]primitive{
		opExit:      {"exit", co, (*VM).exit},
		opLit:       {"lit", co, (*VM).lit},
		opBranch:    {"branch", co, (*VM).branch},
		opBranch0:   {"branch0", co, (*VM).branch0},
		opTick:      {"'", co, (*VM).tick},
		opLitString: {"litstring", co, (*VM).litstring},
		opExecute:   {"execute", 0, (*VM).execute},

		opAdd:     {"+", 0, (*VM).add},
		opSub:     {"-", 0, (*VM).sub},
		opMul:     {"*", 0, (*VM).mul},
		opDiv:     {"/", 0, (*VM).div},
		opMod:     {"mod", 0, (*VM).mod},
		opEq:      {"=", 0, (*VM).eq},
		opLess:    {"<", 0, (*VM).less},
		opGreater: {">", 0, (*VM).greater},
		opAnd:     {"and", 0, (*VM).and},
		opOr:      {"or", 0, (*VM).or},
		opXor:     {"xor", 0, (*VM).xor},
		opInvert:  {"invert", 0, (*VM).invert},

		opDup:        {"dup", 0, (*VM).dup},
		opDrop:       {"drop", 0, (*VM).drop},
		opSwap:       {"swap", 0, (*VM).swap},
		opPick:       {"pick", 0, (*VM).pick},
		opDepth:      {"depth", 0, (*VM).depth},
		opClr:        {"clr", 0, (*VM).clr},
		opPrintStack: {".s", 0, (*VM).printStack},
		opToR:        {">r", co, (*VM).toR},
		opFromR:      {"r>", co, (*VM).fromR},

		opHere:       {"here", 0, (*VM).here},
		opComma:      {",", 0, (*VM).comma},
		opCharComma:  {"c,", 0, (*VM).charComma},
		opXCharComma: {"xc,", 0, (*VM).xcharComma},
		opFetch:      {"@", 0, (*VM).fetchCell},
		opStore:      {"!", 0, (*VM).storeCell},
		opCharFetch:  {"c@", 0, (*VM).fetchChar},
		opCharStore:  {"c!", 0, (*VM).storeChar},
		opAligned:    {"aligned", 0, (*VM).aligned},
		opCell:       {"cell", 0, (*VM).cell},

		opWord:          {"word", 0, (*VM).word},
		opCreate:        {"create", 0, (*VM).create},
		opLatest:        {"latest", 0, (*VM).latest},
		opHidden:        {"hidden", 0, (*VM).hidden},
		opImmediate:     {"immediate", imm, (*VM).immediate},
		opCompileOnly:   {"compile-only", imm, (*VM).compileOnly},
		opInterpretOnly: {"interpret-only", imm, (*VM).interpretOnly},
		opRecursive:     {"recursive", imm, (*VM).recursive},
		opState:         {"state", 0, (*VM).state},
		opLbrac:         {"[", imm, (*VM).lbrac},
		opRbrac:         {"]", 0, (*VM).rbrac},

		opPrint: {".", 0, (*VM).print},
		opEmit:  {"emit", 0, (*VM).emit},
		opKey:   {"key", 0, (*VM).key},
		opTell:  {"tell", 0, (*VM).tell},
		opBye:   {"bye", 0, (*VM).bye},

		opInterpret:     {"interpret", 0, (*VM).interpret},
		opRspStore:      {"rsp!", 0, (*VM).rspStore},
		opHiddenSet:     {"hiddenset", 0, (*VM).hiddenSet},
		opHiddenClr:     {"hiddenclr", 0, (*VM).hiddenClr},
		opLbracInternal: {"lbrac", 0, (*VM).lbrac},
	}
}

//// arithmetic and logic

func (vm *VM) add() { a, b := vm.pop2(); vm.push(a + b) }
func (vm *VM) sub() { a, b := vm.pop2(); vm.push(a - b) }
func (vm *VM) mul() { a, b := vm.pop2(); vm.push(a * b) }

// div and mod truncate toward zero.
func (vm *VM) div() {
	vm.need(2)
	if vm.stack.vals[len(vm.stack.vals)-1] == 0 {
		vm.abort(errDivZero)
	}
	a, b := vm.pop2()
	vm.push(a / b)
}

func (vm *VM) mod() {
	vm.need(2)
	if vm.stack.vals[len(vm.stack.vals)-1] == 0 {
		vm.abort(errDivZero)
	}
	a, b := vm.pop2()
	vm.push(a % b)
}

func (vm *VM) eq()      { a, b := vm.pop2(); vm.push(boolInt(a == b)) }
func (vm *VM) less()    { a, b := vm.pop2(); vm.push(boolInt(a < b)) }
func (vm *VM) greater() { a, b := vm.pop2(); vm.push(boolInt(a > b)) }
func (vm *VM) and()     { a, b := vm.pop2(); vm.push(a & b) }
func (vm *VM) or()      { a, b := vm.pop2(); vm.push(a | b) }
func (vm *VM) xor()     { a, b := vm.pop2(); vm.push(a ^ b) }
func (vm *VM) invert()  { vm.push(^vm.pop()) }

//// stacks

func (vm *VM) dup() {
	vm.need(1)
	vm.push(vm.stack.vals[len(vm.stack.vals)-1])
}

func (vm *VM) drop() { vm.pop() }

func (vm *VM) swap() {
	a, b := vm.pop2()
	vm.push(b, a)
}

// pick copies the n-th value below the top of stack; 0 pick is dup.
func (vm *VM) pick() {
	vm.need(1)
	n := vm.stack.vals[len(vm.stack.vals)-1]
	if n < 0 || n >= vm.stack.depth()-1 {
		vm.abort(errStackEmpty)
	}
	vm.pop()
	vm.push(vm.stack.vals[len(vm.stack.vals)-1-n])
}

func (vm *VM) depth() { vm.push(vm.stack.depth()) }

func (vm *VM) clr() { vm.stack.truncate(0) }

//// memory

func (vm *VM) here() { vm.push(vm.arena.Here()) }

func (vm *VM) comma() {
	vm.need(1)
	_, err := vm.arena.AppendCell(vm.stack.vals[len(vm.stack.vals)-1])
	vm.memFault(err)
	vm.pop()
}

func (vm *VM) charComma() {
	vm.need(1)
	_, err := vm.arena.AppendByte(byte(vm.stack.vals[len(vm.stack.vals)-1]))
	vm.memFault(err)
	vm.pop()
}

// xcharComma appends a rune as UTF-8 bytes; invalid runes append U+FFFD.
func (vm *VM) xcharComma() {
	vm.need(1)
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], rune(vm.stack.vals[len(vm.stack.vals)-1]))
	if vm.arena.Free() < n {
		vm.abort(errDictFull)
	}
	for _, b := range buf[:n] {
		_, err := vm.arena.AppendByte(b)
		vm.memFault(err)
	}
	vm.pop()
}

func (vm *VM) fetchCell() {
	val, err := vm.arena.Load(vm.pop())
	vm.memFault(err)
	vm.push(val)
}

func (vm *VM) fetchChar() {
	b, err := vm.arena.LoadByte(vm.pop())
	vm.memFault(err)
	vm.push(int(b))
}

// storeCell and storeChar refuse to overwrite dictionary records, so that
// user code can not corrupt the lookup chain.
func (vm *VM) storeCell() {
	val, addr := vm.pop2()
	if vm.dict.Protected(addr, mem.CellSize) {
		vm.abort(errBadAddr)
	}
	vm.memFault(vm.arena.Stor(addr, val))
}

func (vm *VM) storeChar() {
	val, addr := vm.pop2()
	if vm.dict.Protected(addr, 1) {
		vm.abort(errBadAddr)
	}
	vm.memFault(vm.arena.StorByte(addr, byte(val)))
}

func (vm *VM) aligned() { vm.push(mem.AlignUp(vm.pop())) }

func (vm *VM) cell() { vm.push(mem.CellSize) }

//// dictionary and compiler

// create appends a new compiled entry named by the last scanned token.
func (vm *VM) create() {
	e, err := vm.dict.Define(vm.token, 0)
	vm.memFault(err)
	vm.logf("+", "create %q @%v", vm.token, e)
}

func (vm *VM) latest() { vm.push(int(vm.dict.Latest())) }

func (vm *VM) popEntry() dict.Entry {
	e, err := vm.dict.EntryAt(vm.pop())
	vm.wordFault(err)
	return e
}

func (vm *VM) hidden() {
	vm.haltif(vm.dict.ToggleFlag(vm.popEntry(), dict.Hidden))
}

// hiddenSet hides an entry; hiding the latest entry marks it as the
// definition in progress.
func (vm *VM) hiddenSet() {
	e := vm.popEntry()
	vm.haltif(vm.dict.SetFlag(e, dict.Hidden))
	if e == vm.dict.Latest() {
		vm.defining = e
	}
}

// hiddenClr reveals an entry, completing it if it was in progress.
func (vm *VM) hiddenClr() {
	e := vm.popEntry()
	vm.haltif(vm.dict.ClearFlag(e, dict.Hidden))
	if e == vm.defining {
		vm.defining = 0
	}
}

func (vm *VM) setLatestFlag(f dict.Flag) {
	e := vm.dict.Latest()
	if e == 0 {
		vm.abort(errNoLatest)
	}
	vm.haltif(vm.dict.SetFlag(e, f))
}

func (vm *VM) immediate()     { vm.setLatestFlag(dict.Immediate) }
func (vm *VM) compileOnly()   { vm.setLatestFlag(dict.CompileOnly) }
func (vm *VM) interpretOnly() { vm.setLatestFlag(dict.NoCompile) }

// recursive reveals the word being defined, so that it may call itself.
func (vm *VM) recursive() {
	e := vm.dict.Latest()
	if e == 0 {
		vm.abort(errNoLatest)
	}
	vm.haltif(vm.dict.ClearFlag(e, dict.Hidden))
}

func (vm *VM) state() { vm.push(boolInt(vm.compiling)) }
func (vm *VM) lbrac() { vm.compiling = false }
func (vm *VM) rbrac() { vm.compiling = true }
