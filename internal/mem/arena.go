package mem

import (
	"encoding/binary"
	"strconv"
)

// CellSize is the number of bytes in one cell; cells hold a Go int.
const CellSize = strconv.IntSize / 8

// AlignUp rounds n up to the next multiple of CellSize.
func AlignUp(n int) int {
	return (n + CellSize - 1) / CellSize * CellSize
}

// Aligned returns true if addr is a multiple of CellSize.
func Aligned(addr int) bool { return addr%CellSize == 0 }

// Arena is a fixed capacity byte addressed memory with a monotonic
// allocation pointer. Nothing allocated is ever freed.
//
// The first cell is reserved so that address 0 never names allocated
// memory, and may be used as a null reference by callers.
type Arena struct {
	buf  []byte
	here int
}

// NewArena creates an arena able to hold capacity bytes, rounded down to a
// whole number of cells.
func NewArena(capacity int) *Arena {
	capacity = capacity / CellSize * CellSize
	if capacity < CellSize {
		capacity = CellSize
	}
	return &Arena{
		buf:  make([]byte, capacity),
		here: CellSize,
	}
}

// Here returns the address of the next byte to be allocated.
func (a *Arena) Here() int { return a.here }

// Cap returns the total byte capacity of the arena.
func (a *Arena) Cap() int { return len(a.buf) }

// Free returns how many bytes remain unallocated.
func (a *Arena) Free() int { return len(a.buf) - a.here }

func (a *Arena) reserve(align bool, n int, op string) (int, error) {
	if n < 0 {
		return 0, Fault{a.here, n, op, "negative size"}
	}
	addr := a.here
	if align {
		addr = AlignUp(addr)
		n = AlignUp(n)
	}
	if end := addr + n; end > len(a.buf) || end < addr {
		return 0, CapacityError{Need: end - a.here, Free: a.Free()}
	}
	a.here = addr + n
	return addr, nil
}

// Allocate reserves n bytes, rounded up to whole cells, starting at the next
// cell boundary; the returned address is always cell aligned.
func (a *Arena) Allocate(n int) (int, error) {
	return a.reserve(true, n, "allocate")
}

// AllocateBytes reserves n bytes at here without any alignment.
func (a *Arena) AllocateBytes(n int) (int, error) {
	return a.reserve(false, n, "allocate bytes")
}

// AppendCell allocates one aligned cell and stores val in it.
func (a *Arena) AppendCell(val int) (int, error) {
	addr, err := a.Allocate(CellSize)
	if err == nil {
		err = a.Stor(addr, val)
	}
	return addr, err
}

// AppendByte allocates one byte at here and stores b in it.
func (a *Arena) AppendByte(b byte) (int, error) {
	addr, err := a.AllocateBytes(1)
	if err == nil {
		a.buf[addr] = b
	}
	return addr, err
}

// Check returns a Fault unless the n byte range at addr is allocated, and is
// cell aligned if aligned is true.
func (a *Arena) Check(addr, n int, aligned bool, op string) error {
	if aligned && !Aligned(addr) {
		return Fault{addr, n, op, "misaligned"}
	}
	if addr < CellSize || n < 0 || addr+n > a.here || addr+n < addr {
		return Fault{addr, n, op, "out of bounds"}
	}
	return nil
}

// Load reads the cell at addr.
func (a *Arena) Load(addr int) (int, error) {
	if err := a.Check(addr, CellSize, true, "load"); err != nil {
		return 0, err
	}
	return getCell(a.buf[addr:]), nil
}

// LoadInto reads len(buf) consecutive cells starting at addr.
func (a *Arena) LoadInto(addr int, buf []int) error {
	if err := a.Check(addr, len(buf)*CellSize, true, "load"); err != nil {
		return err
	}
	for i := range buf {
		buf[i] = getCell(a.buf[addr+i*CellSize:])
	}
	return nil
}

// Stor writes values into consecutive cells starting at addr.
func (a *Arena) Stor(addr int, values ...int) error {
	if err := a.Check(addr, len(values)*CellSize, true, "stor"); err != nil {
		return err
	}
	for i, val := range values {
		putCell(a.buf[addr+i*CellSize:], val)
	}
	return nil
}

// LoadByte reads the byte at addr.
func (a *Arena) LoadByte(addr int) (byte, error) {
	if err := a.Check(addr, 1, false, "load byte"); err != nil {
		return 0, err
	}
	return a.buf[addr], nil
}

// StorByte writes the byte at addr.
func (a *Arena) StorByte(addr int, b byte) error {
	if err := a.Check(addr, 1, false, "stor byte"); err != nil {
		return err
	}
	a.buf[addr] = b
	return nil
}

// Bytes returns a copy of the n bytes at addr.
func (a *Arena) Bytes(addr, n int) ([]byte, error) {
	if err := a.Check(addr, n, false, "load bytes"); err != nil {
		return nil, err
	}
	return append([]byte(nil), a.buf[addr:addr+n]...), nil
}

// StoreText allocates a length prefixed copy of s: one length cell followed
// by the bytes of s, padded out to a cell boundary. Returns the address of
// the length cell.
func (a *Arena) StoreText(s string) (int, error) {
	addr, err := a.Allocate(CellSize + len(s))
	if err != nil {
		return 0, err
	}
	putCell(a.buf[addr:], len(s))
	copy(a.buf[addr+CellSize:], s)
	return addr, nil
}

// TextSize returns the number of bytes that a text of length n occupies.
func TextSize(n int) int { return CellSize + AlignUp(n) }

// Text reads a length prefixed text stored at addr.
func (a *Arena) Text(addr int) (string, error) {
	n, err := a.Load(addr)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", Fault{addr, n, "load text", "negative length"}
	}
	b, err := a.Bytes(addr+CellSize, n)
	return string(b), err
}

func getCell(b []byte) int {
	if CellSize == 8 {
		return int(binary.LittleEndian.Uint64(b))
	}
	return int(int32(binary.LittleEndian.Uint32(b)))
}

func putCell(b []byte, val int) {
	if CellSize == 8 {
		binary.LittleEndian.PutUint64(b, uint64(val))
	} else {
		binary.LittleEndian.PutUint32(b, uint32(val))
	}
}
