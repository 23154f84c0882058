package wire

import (
	"github.com/haukened/split-dns/internal/dns/domain"
)

// DNSCodec converts between DNS wire bytes and domain objects.
type DNSCodec interface {
	// Upstream Functions
	// These methods encode the forwarded query and decode the upstream reply.
	EncodeQuery(id uint16, question domain.Question) ([]byte, error)
	DecodeResponse(data []byte, expectedID uint16) (domain.ResolutionResult, error)

	// Listener Functions
	// These methods decode client requests and encode the replies sent back to them.
	DecodeRequest(data []byte) (domain.DNSRequest, error)
	EncodeResponse(resp domain.DNSResponse) ([]byte, error)
}
