package domain

import (
	"fmt"

	"github.com/miekg/dns"
)

// ResourceRecord is an answer record relayed verbatim from an upstream.
// The forwarder never inspects or rewrites record data.
type ResourceRecord struct {
	rr dns.RR
}

// NewResourceRecord wraps a decoded wire record.
func NewResourceRecord(rr dns.RR) (ResourceRecord, error) {
	if rr == nil || rr.Header() == nil {
		return ResourceRecord{}, fmt.Errorf("resource record must not be nil")
	}
	return ResourceRecord{rr: rr}, nil
}

// ParseResourceRecord builds a record from zone-file presentation format,
// e.g. "db1.corp.local. 60 IN A 10.0.0.10".
func ParseResourceRecord(s string) (ResourceRecord, error) {
	rr, err := dns.NewRR(s)
	if err != nil {
		return ResourceRecord{}, fmt.Errorf("parse record %q: %w", s, err)
	}
	return NewResourceRecord(rr)
}

// Name returns the owner name of the record.
func (r ResourceRecord) Name() string {
	if r.rr == nil {
		return ""
	}
	return r.rr.Header().Name
}

// Type returns the record type.
func (r ResourceRecord) Type() RRType {
	if r.rr == nil {
		return 0
	}
	return RRType(r.rr.Header().Rrtype)
}

// Class returns the record class.
func (r ResourceRecord) Class() RRClass {
	if r.rr == nil {
		return 0
	}
	return RRClass(r.rr.Header().Class)
}

// TTL returns the record TTL in seconds as received from upstream.
func (r ResourceRecord) TTL() uint32 {
	if r.rr == nil {
		return 0
	}
	return r.rr.Header().Ttl
}

// RR returns a deep copy of the wire record.
func (r ResourceRecord) RR() dns.RR {
	if r.rr == nil {
		return nil
	}
	return dns.Copy(r.rr)
}

// String returns the presentation format of the record.
func (r ResourceRecord) String() string {
	if r.rr == nil {
		return ""
	}
	return r.rr.String()
}
