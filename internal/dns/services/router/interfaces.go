package router

import (
	"context"
	"net"

	"github.com/haukened/split-dns/internal/dns/domain"
)

// DomainMatcher classifies a query name as private or public.
type DomainMatcher interface {
	Matches(name string) bool
}

// UpstreamResolver performs one upstream query. Implementations are bound to
// a single endpoint and safe for concurrent use.
type UpstreamResolver interface {
	Query(ctx context.Context, name, typeMnemonic, classMnemonic string) (domain.ResolutionResult, error)
}

// SendFunc transmits a response to the client that sent the request.
type SendFunc func(resp domain.DNSResponse) error

// DNSResponder is what the transport hands each decoded request to.
type DNSResponder interface {
	// HandleRequest routes and answers one request. The response, if any, is
	// delivered through send; the returned error is already logged.
	HandleRequest(ctx context.Context, req domain.DNSRequest, clientAddr net.Addr, send SendFunc) error
}

// ServerTransport defines the interface for DNS server transport implementations.
type ServerTransport interface {
	// Start begins listening for requests and handling them via the provided handler.
	Start(ctx context.Context, handler DNSResponder) error

	// Stop stops accepting requests and waits for in-flight ones to finish.
	Stop() error

	// Address returns the network address the transport is bound to.
	Address() string
}
