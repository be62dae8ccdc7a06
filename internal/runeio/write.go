package runeio

import "io"

// WriteANSIRune writes a rune to w:
// - ASCII runes are written as single bytes
// - NEL is written as the more conventional "\r\n"
// - other C1 controls are written in their 7-bit escaped form, e.g. CSI
//   as "\x1b["
// - all other runes are UTF-8 encoded
func WriteANSIRune(w io.Writer, r rune) (n int, err error) {
	switch {
	case r < 0x80:
		if bw, ok := w.(io.ByteWriter); ok {
			return 1, bw.WriteByte(byte(r))
		}
		return w.Write([]byte{byte(r)})
	case r == 0x85:
		return w.Write([]byte{'\r', '\n'})
	case r <= 0x9f:
		return w.Write([]byte{0x1b, byte(r ^ 0xc0)})
	}
	if rw, ok := w.(interface{ WriteRune(rune) (int, error) }); ok {
		return rw.WriteRune(r)
	}
	return io.WriteString(w, string(r))
}

// WriteANSIString writes each rune of s through WriteANSIRune.
func WriteANSIString(w io.Writer, s string) (n int, err error) {
	for _, r := range s {
		m, err := WriteANSIRune(w, r)
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
