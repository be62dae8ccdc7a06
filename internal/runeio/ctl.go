package runeio

import (
	"errors"
	"strconv"
	"strings"
)

// c0Names are the classic ASCII control mnemonics, indexed by code point.
var c0Names = [32]string{
	"NUL", "SOH", "STX", "ETX", "EOT", "ENQ", "ACK", "BEL",
	"BS", "HT", "NL", "VT", "NP", "CR", "SO", "SI",
	"DLE", "DC1", "DC2", "DC3", "DC4", "NAK", "SYN", "ETB",
	"CAN", "EM", "SUB", "ESC", "FS", "GS", "RS", "US",
}

// c1Names are the ISO-8859 extended control mnemonics, indexed by code point
// less 0x80.
var c1Names = [32]string{
	"PAD", "HOP", "BPH", "NBH", "IND", "NEL", "SSA", "ESA",
	"HTS", "HTJ", "VTS", "PLD", "PLU", "RI", "SS2", "SS3",
	"DCS", "PU1", "PU2", "STS", "CCH", "MW", "SPA", "EPA",
	"SOS", "SGCI", "SCI", "CSI", "ST", "OSC", "PM", "APC",
}

// ControlWords maps control mnemonics like "<ESC>" (in either case) and
// caret forms like "^[" to their runes; space and delete are included as
// "<SP>" and "<DEL>".
var ControlWords = make(map[string]rune, 3*(len(c0Names)+len(c1Names)+2))

func init() {
	for i, name := range c0Names {
		addControlWord(name, rune(i))
	}
	addControlWord("SP", 0x20)
	addControlWord("DEL", 0x7f)
	for i, name := range c1Names {
		addControlWord(name, rune(0x80+i))
	}
}

func addControlWord(name string, r rune) {
	word := "<" + name + ">"
	ControlWords[strings.ToUpper(word)] = r
	ControlWords[strings.ToLower(word)] = r
	if caret := CaretForm(r); caret != "" {
		ControlWords[caret] = r
	}
}

// ControlName returns the "<NAME>" mnemonic of a control rune, or "" for any
// other rune.
func ControlName(r rune) string {
	switch {
	case 0 <= r && r < 0x20:
		return "<" + c0Names[r] + ">"
	case r == 0x20:
		return "<SP>"
	case r == 0x7f:
		return "<DEL>"
	case 0x80 <= r && r <= 0x9f:
		return "<" + c1Names[r-0x80] + ">"
	}
	return ""
}

// CaretForm returns the ^-escaped printable form of a control rune, or ""
// for any other rune.
func CaretForm(r rune) string {
	if r < 0x20 || r == 0x7f {
		return "^" + string(r^0x40)
	} else if 0x80 <= r && r <= 0x9f {
		return "^[" + string(r^0xc0)
	}
	return ""
}

// ErrInvalidRune is returned by UnquoteRune for tokens that are not
// character literals.
var ErrInvalidRune = errors.New(`rune literal must be "^X" "<NAME>" or 'X'`)

// UnquoteRune parses a character literal token: a quoted character like 'a'
// or '\n', a control mnemonic like <ESC>, or a caret form like ^[.
func UnquoteRune(token string) (rune, error) {
	if r, defined := ControlWords[token]; defined {
		return r, nil
	}

	runes := []rune(token)
	if n := len(runes); n < 3 || n > 4 || runes[0] != '\'' || runes[n-1] != '\'' {
		return 0, ErrInvalidRune
	}

	value, _, tail, err := strconv.UnquoteChar(token[1:], '\'')
	if err == nil && tail != "'" {
		err = ErrInvalidRune
	}
	return value, err
}
