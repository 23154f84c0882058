package domain

import (
	"fmt"
	"strings"
)

// RRType represents a DNS resource record type (e.g. A, AAAA, MX).
// See IANA DNS Parameters for assigned codes.
type RRType uint16

// DNS Resource Record Type constants
const (
	RRTypeA     RRType = 1   // A - IPv4 address
	RRTypeNS    RRType = 2   // NS - Name server
	RRTypeCNAME RRType = 5   // CNAME - Canonical name
	RRTypeSOA   RRType = 6   // SOA - Start of authority
	RRTypePTR   RRType = 12  // PTR - Pointer
	RRTypeMX    RRType = 15  // MX - Mail exchange
	RRTypeTXT   RRType = 16  // TXT - Text
	RRTypeAAAA  RRType = 28  // AAAA - IPv6 address
	RRTypeSRV   RRType = 33  // SRV - Service
	RRTypeOPT   RRType = 41  // OPT - EDNS option
	RRTypeANY   RRType = 255 // ANY - Any type (query only)
	RRTypeCAA   RRType = 257 // CAA - Certificate authority authorization
)

// DefaultRRTypeMnemonic is what Mnemonic returns for a code missing from the table.
const DefaultRRTypeMnemonic = "A"

// rrTypeMnemonics lists every query type the forwarder can name upstream.
var rrTypeMnemonics = map[RRType]string{
	1:   "A",
	2:   "NS",
	3:   "MD",
	4:   "MF",
	5:   "CNAME",
	6:   "SOA",
	7:   "MB",
	8:   "MG",
	9:   "MR",
	10:  "NULL",
	11:  "WKS",
	12:  "PTR",
	13:  "HINFO",
	14:  "MINFO",
	15:  "MX",
	16:  "TXT",
	28:  "AAAA",
	33:  "SRV",
	41:  "EDNS",
	99:  "SPF",
	252: "AXFR",
	253: "MAILB",
	254: "MAILA",
	255: "ANY",
	257: "CAA",
}

var rrTypeCodes = invert(rrTypeMnemonics)

// Mnemonic returns the name used when the query is forwarded upstream.
//
// Codes that are not in the table fall back to DefaultRRTypeMnemonic, so a
// DNSKEY, HTTPS or SVCB query is forwarded as an A query and the client gets
// A records back. That is a known correctness risk for uncommon types.
func (t RRType) Mnemonic() string {
	if m, ok := rrTypeMnemonics[t]; ok {
		return m
	}
	return DefaultRRTypeMnemonic
}

// IsKnown reports whether the type has its own entry in the mnemonic table.
func (t RRType) IsKnown() bool {
	_, ok := rrTypeMnemonics[t]
	return ok
}

// String returns the mnemonic for known types and the RFC 3597 "TYPEnnn"
// form otherwise. Unlike Mnemonic it never substitutes A.
func (t RRType) String() string {
	if m, ok := rrTypeMnemonics[t]; ok {
		return m
	}
	return fmt.Sprintf("TYPE%d", uint16(t))
}

// RRTypeFromMnemonic converts a mnemonic back to its type code.
// The lookup is case-insensitive; the second value is false for unknown names.
func RRTypeFromMnemonic(s string) (RRType, bool) {
	t, ok := rrTypeCodes[strings.ToUpper(strings.TrimSpace(s))]
	return t, ok
}
