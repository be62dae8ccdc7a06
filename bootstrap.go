package main

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jcorbin/goforth/internal/dict"
	"github.com/jcorbin/goforth/internal/mem"
)

// preludeSource defines the rest of the language in terms of the words
// built by bootstrap; it is read as input before any user source.
//go:embed prelude.fs
var preludeSource string

type bootstrapWord struct {
	name  string
	flags dict.Flag
	body  string
}

// bootstrapWords are compiled by the outer interpreter, exactly as if they
// had been written between ":" and ";", before ":" and ";" exist.
func bootstrapWords() []bootstrapWord {
	const (
		imm = dict.Immediate
		co  = dict.CompileOnly
		nc  = dict.NoCompile
	)
	return []bootstrapWord{
		// The top level loop: reset the return stack, then interpret tokens
		// forever; the branch offset cell jumps back two cells to interpret.
		{"quit", 0, fmt.Sprintf("0 rsp! interpret branch [ %d , ]", -2*mem.CellSize)},

		// Defining words: ":" reads a name and creates a hidden entry before
		// switching to compile mode; ";" finishes the thread, reveals the
		// entry, and switches back to interpreting.
		{":", imm | nc, "word create latest hiddenset ] exit"},
		{";", imm | co, "' exit , latest hiddenclr lbrac exit"},

		// Conditionals: "if" compiles a branch0 with a placeholder offset,
		// leaving the placeholder's address for "then" (or "else") to patch
		// with the distance to here.
		{"if", imm | co, "' branch0 , here 0 , exit"},
		{"then", imm | co, "dup here swap - swap ! exit"},
		{"else", imm | co, "' branch , here 0 , swap dup here swap - swap ! exit"},
	}
}

// bootstrap installs every primitive, compiles the bootstrap words, and then
// hides the internal primitives that only bootstrap words refer to. Any
// fault during bootstrap halts the VM.
func (vm *VM) bootstrap(ctx context.Context) {
	defer func() {
		if e := recover(); e != nil {
			if uf, ok := e.(userFault); ok {
				e = haltError{fmt.Errorf("bootstrap failed: %w", uf)}
			}
			panic(e)
		}
	}()

	if vm.logfn != nil {
		defer vm.withLogPrefix("boot ")()
	}

	for op := opNone + 1; op < opMax; op++ {
		prim := primitives[op]
		e, err := vm.dict.Append(prim.name, prim.flags, dict.Primitive(op))
		vm.haltif(err)
		vm.ops[op] = e
	}

	for _, bw := range bootstrapWords() {
		vm.compileWord(ctx, bw.name, bw.flags, bw.body)
	}

	for _, op := range internalOps {
		vm.haltif(vm.dict.SetFlag(vm.ops[op], dict.Hidden))
	}

	quit := vm.lookup("quit")
	if quit == 0 {
		vm.halt(errNoQuit)
	}
	vm.quitBody, _ = vm.header(quit).Behavior.Compiled()
}

// compileWord defines a word by feeding each token of body through the
// outer interpreter in compile mode.
func (vm *VM) compileWord(ctx context.Context, name string, flags dict.Flag, body string) {
	e, err := vm.dict.Define(name, flags|dict.Hidden)
	vm.haltif(err)
	vm.logf("+", "define %q @%v", name, e)

	vm.compiling = true
	for _, token := range strings.Fields(body) {
		vm.token = token
		vm.interpretToken(token)
		vm.exec(ctx)
	}
	vm.compiling = false

	vm.haltif(vm.dict.ClearFlag(e, dict.Hidden))
}
