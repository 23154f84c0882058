package transport

import (
	"fmt"

	"github.com/haukened/split-dns/internal/dns/common/log"
	"github.com/haukened/split-dns/internal/dns/gateways/wire"
	"github.com/haukened/split-dns/internal/dns/services/router"
)

// NewTransport creates a transport of the given type bound to addr.
func NewTransport(transportType TransportType, addr string, codec wire.DNSCodec, logger log.Logger) (router.ServerTransport, error) {
	switch transportType {
	case TransportUDP:
		return NewUDPTransport(addr, codec, logger), nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", transportType)
	}
}
