package domain

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// UpstreamEndpoint is the fixed address one upstream resolver talks to.
type UpstreamEndpoint struct {
	Address   string
	Port      uint16
	Transport string
}

// NewUpstreamEndpoint validates address and port and returns a UDP endpoint.
func NewUpstreamEndpoint(address string, port uint16) (UpstreamEndpoint, error) {
	if _, err := netip.ParseAddr(address); err != nil {
		return UpstreamEndpoint{}, fmt.Errorf("invalid upstream address %q: %w", address, err)
	}
	if port == 0 {
		return UpstreamEndpoint{}, fmt.Errorf("upstream port must not be 0")
	}
	return UpstreamEndpoint{
		Address:   address,
		Port:      port,
		Transport: "udp",
	}, nil
}

// HostPort returns the endpoint in dialable "host:port" form.
func (e UpstreamEndpoint) HostPort() string {
	return net.JoinHostPort(e.Address, strconv.Itoa(int(e.Port)))
}

// String implements fmt.Stringer.
func (e UpstreamEndpoint) String() string {
	return e.Transport + "://" + e.HostPort()
}
