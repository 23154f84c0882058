// Package upstream forwards a single question to one fixed DNS server over UDP.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/haukened/split-dns/internal/dns/domain"
	"github.com/haukened/split-dns/internal/dns/gateways/wire"
)

// Error message constants for consistent error handling
const (
	errCodecRequired     = "DNS codec is required"
	errEndpointRequired  = "upstream endpoint is required"
	errUnknownType       = "unknown record type mnemonic %q"
	errUnknownClass      = "unknown record class mnemonic %q"
	errQueryTimeout      = "query timeout after %v"
	errFailedToConnect   = "failed to connect: %w"
	errEncodeFailed      = "encode failed: %w"
	errWriteFailed       = "write failed: %w"
	errReadFailed        = "read failed: %w"
	errDecodeFailed      = "decode failed: %w"
	errServerFailedQuery = "%w: server %s: %w"
)

const (
	defaultTimeout = 5 * time.Second

	// readBufferSize fits any UDP reply; upstream queries carry no EDNS0 so
	// replies are normally 512 bytes or less.
	readBufferSize = dns.DefaultMsgSize
)

// Resolver sends queries to a single upstream endpoint. It holds no mutable
// state, so one instance serves every request goroutine.
type Resolver struct {
	endpoint domain.UpstreamEndpoint
	timeout  time.Duration
	codec    wire.DNSCodec
	dial     DialFunc
	newID    func() uint16
}

// DialFunc defines a function type for establishing a network connection.
// It takes a context for cancellation, the network type (e.g., "tcp", "udp"),
// and the address to connect to, returning a net.Conn and an error if any occurs.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Options defines configuration parameters for the upstream resolver.
type Options struct {
	// required parameters
	Endpoint domain.UpstreamEndpoint
	Timeout  time.Duration
	Codec    wire.DNSCodec
	// options to inject for testing purposes
	Dial  DialFunc
	NewID func() uint16
}

// NewResolver creates a new upstream resolver with the specified options.
// Returns an error if the endpoint or codec is missing.
// Sets default timeout to 5 seconds and default dial function if not provided.
func NewResolver(opts Options) (*Resolver, error) {
	if opts.Endpoint.Address == "" || opts.Endpoint.Port == 0 {
		return nil, errors.New(errEndpointRequired)
	}
	if opts.Codec == nil {
		return nil, errors.New(errCodecRequired)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Dial == nil {
		opts.Dial = (&net.Dialer{}).DialContext
	}
	if opts.NewID == nil {
		opts.NewID = dns.Id
	}
	if opts.Endpoint.Transport == "" {
		opts.Endpoint.Transport = "udp"
	}
	return &Resolver{
		endpoint: opts.Endpoint,
		timeout:  opts.Timeout,
		codec:    opts.Codec,
		dial:     opts.Dial,
		newID:    opts.NewID,
	}, nil
}

// Endpoint returns the upstream this resolver is bound to.
func (r *Resolver) Endpoint() domain.UpstreamEndpoint {
	return r.endpoint
}

// withQueryTimeout bounds one upstream exchange by the resolver's timeout.
// A caller deadline that expires earlier still wins.
func (r *Resolver) withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// Query resolves name with the given type and class mnemonics against the
// upstream endpoint. Every failure wraps domain.ErrResolve.
func (r *Resolver) Query(ctx context.Context, name, typeMnemonic, classMnemonic string) (domain.ResolutionResult, error) {
	question, err := r.question(name, typeMnemonic, classMnemonic)
	if err != nil {
		return domain.ResolutionResult{}, fmt.Errorf(errServerFailedQuery, domain.ErrResolve, r.endpoint.HostPort(), err)
	}

	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	res, err := r.queryWithContext(ctx, question)
	if err != nil {
		return domain.ResolutionResult{}, fmt.Errorf(errServerFailedQuery, domain.ErrResolve, r.endpoint.HostPort(), err)
	}
	return res, nil
}

func (r *Resolver) question(name, typeMnemonic, classMnemonic string) (domain.Question, error) {
	rrtype, ok := domain.RRTypeFromMnemonic(typeMnemonic)
	if !ok {
		return domain.Question{}, fmt.Errorf(errUnknownType, typeMnemonic)
	}
	class, ok := domain.RRClassFromMnemonic(classMnemonic)
	if !ok {
		return domain.Question{}, fmt.Errorf(errUnknownClass, classMnemonic)
	}
	return domain.NewQuestion(name, rrtype, class)
}

// queryWithContext performs one UDP exchange with context cancellation support.
func (r *Resolver) queryWithContext(ctx context.Context, question domain.Question) (domain.ResolutionResult, error) {
	start := time.Now()
	id := r.newID()
	queryBytes, err := r.codec.EncodeQuery(id, question)
	if err != nil {
		return domain.ResolutionResult{}, fmt.Errorf(errEncodeFailed, err)
	}

	conn, err := r.dial(ctx, r.endpoint.Transport, r.endpoint.HostPort())
	if err != nil {
		return domain.ResolutionResult{}, fmt.Errorf(errFailedToConnect, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	type result struct {
		res domain.ResolutionResult
		err error
	}
	resultChan := make(chan result, 1)

	go func() {
		if _, err := conn.Write(queryBytes); err != nil {
			resultChan <- result{err: fmt.Errorf(errWriteFailed, err)}
			return
		}

		buffer := make([]byte, readBufferSize)
		n, err := conn.Read(buffer)
		if err != nil {
			resultChan <- result{err: fmt.Errorf(errReadFailed, err)}
			return
		}

		res, err := r.codec.DecodeResponse(buffer[:n], id)
		if err != nil {
			err = fmt.Errorf(errDecodeFailed, err)
		}
		resultChan <- result{res: res, err: err}
	}()

	select {
	case res := <-resultChan:
		return res.res, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.ResolutionResult{}, fmt.Errorf(errQueryTimeout+": %w", time.Since(start).Round(time.Millisecond), ctx.Err())
		}
		return domain.ResolutionResult{}, ctx.Err()
	}
}
