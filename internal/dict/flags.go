package dict

import "strings"

// Flag is a bitset of word attributes.
type Flag int

// Word flags.
const (
	// Immediate words run even while compiling.
	Immediate Flag = 1 << iota

	// Hidden words are skipped by Lookup.
	Hidden

	// CompileOnly words may not run while interpreting.
	CompileOnly

	// NoCompile words may not run while compiling.
	NoCompile
)

var flagNames = []struct {
	Flag
	name string
}{
	{Immediate, "immediate"},
	{Hidden, "hidden"},
	{CompileOnly, "compile-only"},
	{NoCompile, "no-compile"},
}

func (f Flag) String() string {
	var sb strings.Builder
	for _, fn := range flagNames {
		if f&fn.Flag != 0 {
			if sb.Len() > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(fn.name)
		}
	}
	return sb.String()
}

// Behavior is what a word does when invoked: either a native primitive,
// identified by a non-zero operation number, or a compiled thread starting
// at an arena address.
type Behavior struct {
	op   int
	body int
}

// Primitive returns a native Behavior; op must be non-zero.
func Primitive(op int) Behavior { return Behavior{op: op} }

// Compiled returns a threaded Behavior whose body starts at addr.
func Compiled(addr int) Behavior { return Behavior{body: addr} }

// Primitive returns the operation number and true for native behaviors.
func (b Behavior) Primitive() (op int, ok bool) { return b.op, b.op != 0 }

// Compiled returns the thread address and true for compiled behaviors.
func (b Behavior) Compiled() (body int, ok bool) { return b.body, b.op == 0 }
