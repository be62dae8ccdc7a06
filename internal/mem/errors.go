package mem

import "fmt"

// Fault indicates an out of bounds or misaligned access; callers are
// expected to validate addresses before using an Arena, so any Fault is a
// bug in the caller.
type Fault struct {
	Addr   int
	Size   int
	Op     string
	Reason string
}

func (f Fault) Error() string {
	return fmt.Sprintf("%v %v @%v size:%v", f.Reason, f.Op, f.Addr, f.Size)
}

// CapacityError indicates that an allocation did not fit in the arena.
type CapacityError struct {
	Need int
	Free int
}

func (ce CapacityError) Error() string {
	return fmt.Sprintf("arena capacity exceeded: need %v bytes, %v free", ce.Need, ce.Free)
}
