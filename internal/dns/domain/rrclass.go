package domain

import (
	"fmt"
	"strings"
)

// RRClass represents a DNS class (usually IN for Internet).
type RRClass uint16

// DNS Resource Record Class constants
const (
	RRClassIN  RRClass = 1   // IN - Internet
	RRClassCS  RRClass = 2   // CS - CSNET (obsolete)
	RRClassCH  RRClass = 3   // CH - Chaos
	RRClassHS  RRClass = 4   // HS - Hesiod
	RRClassANY RRClass = 255 // ANY - Any class (query only)
)

// DefaultRRClassMnemonic is what Mnemonic returns for a code missing from the table.
const DefaultRRClassMnemonic = "IN"

var rrClassMnemonics = map[RRClass]string{
	RRClassIN:  "IN",
	RRClassCS:  "CS",
	RRClassCH:  "CH",
	RRClassHS:  "HS",
	RRClassANY: "ANY",
}

var rrClassCodes = invert(rrClassMnemonics)

// Mnemonic returns the class name used upstream, defaulting to IN.
func (c RRClass) Mnemonic() string {
	if m, ok := rrClassMnemonics[c]; ok {
		return m
	}
	return DefaultRRClassMnemonic
}

// IsKnown reports whether the class has its own entry in the mnemonic table.
func (c RRClass) IsKnown() bool {
	_, ok := rrClassMnemonics[c]
	return ok
}

// String returns the mnemonic for known classes and "CLASSnnn" otherwise.
func (c RRClass) String() string {
	if m, ok := rrClassMnemonics[c]; ok {
		return m
	}
	return fmt.Sprintf("CLASS%d", uint16(c))
}

// RRClassFromMnemonic converts a class mnemonic back to its code.
func RRClassFromMnemonic(s string) (RRClass, bool) {
	c, ok := rrClassCodes[strings.ToUpper(strings.TrimSpace(s))]
	return c, ok
}
