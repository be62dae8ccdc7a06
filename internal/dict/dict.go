package dict

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jcorbin/goforth/internal/mem"
)

// Entry identifies a word by the arena address of its record; the zero
// Entry names no word, and terminates the link chain.
type Entry int

// Entry records are stored in the arena as five cells, followed by the
// length prefixed name text.
const (
	linkField = iota
	nameField
	flagsField
	codeField
	bodyField
	recordCells
)

// RecordSize is the number of bytes in an entry record, excluding its name.
const RecordSize = recordCells * mem.CellSize

// Header holds the decoded fields of an entry record.
type Header struct {
	Link     Entry
	Name     int
	Flags    Flag
	Behavior Behavior
}

// InvalidEntryError indicates that an address does not name an entry record.
type InvalidEntryError struct{ Addr int }

func (iee InvalidEntryError) Error() string {
	return fmt.Sprintf("invalid dictionary entry @%v", iee.Addr)
}

var (
	errNoName    = errors.New("entry name may not be empty")
	errNotLatest = errors.New("may only drop the latest entry")
)

// Dictionary is an append only, newest first, linked list of named entries
// stored in an arena.
type Dictionary struct {
	arena  *mem.Arena
	latest Entry

	// spans indexes every linked record, along with the end of its name,
	// in ascending address order.
	spans []span
}

type span struct {
	entry Entry
	end   int
}

// New creates an empty dictionary within the given arena.
func New(arena *mem.Arena) *Dictionary {
	return &Dictionary{arena: arena}
}

// Arena returns the arena that backs the dictionary.
func (d *Dictionary) Arena() *mem.Arena { return d.arena }

// Latest returns the most recently appended entry.
func (d *Dictionary) Latest() Entry { return d.latest }

// Len returns the number of linked entries.
func (d *Dictionary) Len() int { return len(d.spans) }

// Append adds a new entry with the given behavior, which becomes latest.
// Either the whole record is allocated, or a mem.CapacityError is returned
// and the arena is left unchanged.
func (d *Dictionary) Append(name string, flags Flag, b Behavior) (Entry, error) {
	return d.append(name, flags, b, false)
}

// Define adds a new compiled entry whose thread starts at the first cell
// after its name; the caller is expected to append the thread next.
func (d *Dictionary) Define(name string, flags Flag) (Entry, error) {
	return d.append(name, flags, Behavior{}, true)
}

func (d *Dictionary) append(name string, flags Flag, b Behavior, define bool) (Entry, error) {
	if name == "" {
		return 0, errNoName
	}

	here := d.arena.Here()
	if need := mem.AlignUp(here) - here + RecordSize + mem.TextSize(len(name)); need > d.arena.Free() {
		return 0, mem.CapacityError{Need: need, Free: d.arena.Free()}
	}

	addr, err := d.arena.Allocate(RecordSize)
	if err != nil {
		return 0, err
	}
	nameAddr, err := d.arena.StoreText(name)
	if err != nil {
		return 0, err
	}
	if define {
		b = Compiled(d.arena.Here())
	}
	if err := d.arena.Stor(addr, int(d.latest), nameAddr, int(flags), b.op, b.body); err != nil {
		return 0, err
	}

	e := Entry(addr)
	d.spans = append(d.spans, span{e, d.arena.Here()})
	d.latest = e
	return e, nil
}

// Drop unlinks the latest entry, e.g. to abandon a partial definition.
// Its arena space is not reclaimed, but it is no longer a valid entry.
func (d *Dictionary) Drop(e Entry) error {
	if e == 0 || e != d.latest {
		return errNotLatest
	}
	h, err := d.Header(e)
	if err != nil {
		return err
	}
	d.latest = h.Link
	d.spans = d.spans[:len(d.spans)-1]
	return nil
}

// EntryAt validates that addr names a linked entry record.
func (d *Dictionary) EntryAt(addr int) (Entry, error) {
	i := sort.Search(len(d.spans), func(i int) bool {
		return int(d.spans[i].entry) >= addr
	})
	if i < len(d.spans) && int(d.spans[i].entry) == addr {
		return Entry(addr), nil
	}
	return 0, InvalidEntryError{addr}
}

// Protected returns true if any of the n bytes at addr overlap an entry
// record or name.
func (d *Dictionary) Protected(addr, n int) bool {
	i := sort.Search(len(d.spans), func(i int) bool {
		return d.spans[i].end > addr
	})
	return i < len(d.spans) && int(d.spans[i].entry) < addr+n
}

// Header loads the record fields of e.
func (d *Dictionary) Header(e Entry) (h Header, err error) {
	if _, err := d.EntryAt(int(e)); err != nil {
		return h, err
	}
	var buf [recordCells]int
	if err := d.arena.LoadInto(int(e), buf[:]); err != nil {
		return h, err
	}
	h.Link = Entry(buf[linkField])
	h.Name = buf[nameField]
	h.Flags = Flag(buf[flagsField])
	h.Behavior = Behavior{op: buf[codeField], body: buf[bodyField]}
	return h, nil
}

// Name returns the name of e.
func (d *Dictionary) Name(e Entry) (string, error) {
	h, err := d.Header(e)
	if err != nil {
		return "", err
	}
	return d.arena.Text(h.Name)
}

// Flags returns the flags of e.
func (d *Dictionary) Flags(e Entry) (Flag, error) {
	h, err := d.Header(e)
	return h.Flags, err
}

// SetFlag sets flag bits on e.
func (d *Dictionary) SetFlag(e Entry, f Flag) error {
	return d.updateFlags(e, func(flags Flag) Flag { return flags | f })
}

// ClearFlag clears flag bits on e.
func (d *Dictionary) ClearFlag(e Entry, f Flag) error {
	return d.updateFlags(e, func(flags Flag) Flag { return flags &^ f })
}

// ToggleFlag flips flag bits on e.
func (d *Dictionary) ToggleFlag(e Entry, f Flag) error {
	return d.updateFlags(e, func(flags Flag) Flag { return flags ^ f })
}

func (d *Dictionary) updateFlags(e Entry, update func(Flag) Flag) error {
	h, err := d.Header(e)
	if err != nil {
		return err
	}
	return d.arena.Stor(int(e)+flagsField*mem.CellSize, int(update(h.Flags)))
}

// Lookup searches for a visible entry with the given name, starting from
// the given entry and following links back to older entries. Returns a zero
// Entry if no match is found.
func (d *Dictionary) Lookup(name string, from Entry) (Entry, error) {
	for e := from; e != 0; {
		h, err := d.Header(e)
		if err != nil {
			return 0, err
		}
		if h.Flags&Hidden == 0 {
			if n, err := d.arena.Load(h.Name); err != nil {
				return 0, err
			} else if n == len(name) {
				s, err := d.arena.Text(h.Name)
				if err != nil {
					return 0, err
				}
				if s == name {
					return e, nil
				}
			}
		}
		e = h.Link
	}
	return 0, nil
}

// Entries returns all linked entries, newest first.
func (d *Dictionary) Entries() []Entry {
	entries := make([]Entry, len(d.spans))
	for i, sp := range d.spans {
		entries[len(entries)-1-i] = sp.entry
	}
	return entries
}
