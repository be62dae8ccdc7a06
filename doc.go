/* Package main: goforth, a small self-extending FORTH

FORTH is a language built from words. A word is either a primitive, built
into the machine, or a thread: a list of other words, run one after another.
Numbers push themselves onto the data stack; everything else is looked up in
the dictionary and run. Because user-defined words are indistinguishable
from built-in ones, the language grows by defining itself.

This implementation keeps all of its state in a single byte-addressed arena:
the dictionary, every compiled thread, and any data that programs allocate
with "here" and ",". Each dictionary entry records a link to the previous
entry, its name, its flags, and either a primitive opcode or the address
of its thread. Threads are sequences of cells holding entry addresses, with
inline operands following "lit", "branch", "branch0", "'" and "litstring".

Section 1: the machine

The VM has a data stack, a return stack, an instruction pointer, and a
compile flag. Running a thread pushes the caller's instruction pointer onto
the return stack; "exit" pops it back. The outer interpreter is itself a
thread, "quit", which resets the return stack and loops over "interpret":

	: quit 0 rsp! interpret branch [ -2 cells , ] ;

"interpret" reads one whitespace-delimited token. In interpret mode it runs
the word named (or pushes the number); in compile mode it appends the word's
address to the thread under construction, unless the word is immediate, in
which case it runs right away. Compiled numbers become "lit n".

Flags restrict how words may be used: immediate words run even while
compiling, compile-only words fault when interpreted, interpret-only words
fault when compiled or executed during compilation, and hidden words are
skipped by lookup.

Section 2: bootstrapping

Only primitives exist when the VM starts. A handful of words are then
compiled directly from source, as if they had been written between ":" and
";" before those words existed: "quit", ":", ";", "if", "then", and "else".
For example:

	: ; ' exit , latest hiddenclr [ ; immediate compile-only

After that, prelude.fs is read through the normal interpreter, defining the
rest of the everyday vocabulary in FORTH itself: stack shuffles like "over"
and "rot", loops with "begin", "until", "while" and "repeat", "(" comments,
string literals with `."`, and the "constant" and "variable" defining words.

Section 3: faults

Mistakes made by the program, such as an unknown word, an empty stack, or a
store into the dictionary, are faults. A fault abandons the current line,
discards any partially compiled definition, returns to interpret mode, and
reports:

	  error: stack empty
	  token: drop

The data stack survives a fault, so that interactive work is not lost.
Running out of input, "bye", or failing to read or write are not faults;
they halt the VM.

Section 4: the command

Run without arguments, goforth reads standard input, with line editing and
history when it is a terminal, answering " ok" after each line. Named files
are read in order before standard input. The -config flag loads a YAML file
of arena, stack, and prompt settings; -trace logs every step of execution,
-dump prints the dictionary after halting, and -stats reports memory use.
*/
package main
