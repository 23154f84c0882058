// Package transport owns the client-facing sockets. It converts between wire
// bytes and domain objects so the router only ever sees domain types.
package transport

// TransportType names a client-facing DNS transport.
type TransportType string

const (
	// TransportUDP is classic DNS over UDP (RFC 1035).
	TransportUDP TransportType = "udp"
)
