// Package router holds the split-horizon routing decision: pick the private
// or public upstream for each request, forward, and relay the answer.
package router

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/haukened/split-dns/internal/dns/common/clock"
	"github.com/haukened/split-dns/internal/dns/common/log"
	"github.com/haukened/split-dns/internal/dns/common/utils"
	"github.com/haukened/split-dns/internal/dns/domain"
)

// Router dispatches requests to the private or public upstream. All of its
// dependencies are fixed at construction and read-only afterwards.
type Router struct {
	matcher        DomainMatcher
	private        UpstreamResolver
	public         UpstreamResolver
	logger         log.Logger
	clock          clock.Clock
	requestTimeout time.Duration
}

// Options carries the Router dependencies.
type Options struct {
	Matcher DomainMatcher
	Private UpstreamResolver
	Public  UpstreamResolver
	Logger  log.Logger
	Clock   clock.Clock

	// RequestTimeout bounds one request end to end; 0 leaves it to the
	// upstream resolver's own timeout.
	RequestTimeout time.Duration
}

// New validates the dependencies and returns a Router.
func New(opts Options) (*Router, error) {
	if opts.Matcher == nil {
		return nil, errors.New("router: domain matcher is required")
	}
	if opts.Private == nil || opts.Public == nil {
		return nil, errors.New("router: both private and public upstream resolvers are required")
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	return &Router{
		matcher:        opts.Matcher,
		private:        opts.Private,
		public:         opts.Public,
		logger:         opts.Logger,
		clock:          opts.Clock,
		requestTimeout: opts.RequestTimeout,
	}, nil
}

// HandleRequest routes one request. Only the first question is resolved.
//
// On success the response, carrying the request's ID and question section,
// is passed to send. On failure nothing is sent, so the client times out; the
// error is logged once and returned wrapping domain.ErrMalformedRequest,
// domain.ErrResolve or domain.ErrSend.
func (r *Router) HandleRequest(ctx context.Context, req domain.DNSRequest, clientAddr net.Addr, send SendFunc) error {
	start := r.clock.Now()
	client := addrString(clientAddr)
	resp := domain.NewResponseFromRequest(req)

	q, err := req.FirstQuestion()
	if err != nil {
		r.logger.Warn(map[string]any{
			"client":   client,
			"query_id": req.ID,
			"error":    err,
		}, "Client sent an invalid request")
		return err
	}

	route := domain.RouteFor(r.matcher.Matches(q.Name))
	typeMnemonic := q.Type.Mnemonic()
	classMnemonic := q.Class.Mnemonic()
	name := logName(q.Name)

	r.logger.Info(map[string]any{
		"client":   client,
		"route":    route.Indicator(),
		"query_id": req.ID,
		"type":     typeMnemonic,
		"name":     name,
	}, "DNS query")

	if !q.Type.IsKnown() || !q.Class.IsKnown() {
		r.logger.Debug(map[string]any{
			"query_id": req.ID,
			"qtype":    uint16(q.Type),
			"qclass":   uint16(q.Class),
			"type":     typeMnemonic,
			"class":    classMnemonic,
		}, "Query type or class has no mnemonic; forwarding with fallback")
	}

	if r.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.requestTimeout)
		defer cancel()
	}

	result, err := r.upstream(route).Query(ctx, q.Name, typeMnemonic, classMnemonic)
	if err != nil {
		if !errors.Is(err, domain.ErrResolve) {
			err = fmt.Errorf("%w: %w", domain.ErrResolve, err)
		}
		r.logger.Error(map[string]any{
			"client":   client,
			"route":    route.String(),
			"query_id": req.ID,
			"name":     name,
			"error":    err,
			"elapsed":  clock.Since(r.clock, start).String(),
		}, "Upstream resolution failed")
		return err
	}

	resp = resp.WithResult(result)
	if err := deliver(send, resp); err != nil {
		r.logger.Error(map[string]any{
			"client":   client,
			"query_id": req.ID,
			"error":    err,
		}, "Failed to send DNS response")
		return err
	}

	r.logger.Debug(map[string]any{
		"client":   client,
		"route":    route.String(),
		"query_id": resp.ID,
		"rcode":    resp.RCode.String(),
		"answers":  resp.AnswerCount(),
		"elapsed":  clock.Since(r.clock, start).String(),
	}, "DNS response relayed")
	return nil
}

func (r *Router) upstream(route domain.Route) UpstreamResolver {
	if route == domain.RoutePrivate {
		return r.private
	}
	return r.public
}

// deliver calls send and classifies any failure as domain.ErrSend.
func deliver(send SendFunc, resp domain.DNSResponse) error {
	if send == nil {
		return fmt.Errorf("%w: no send callback", domain.ErrSend)
	}
	if err := send(resp); err != nil {
		if errors.Is(err, domain.ErrSend) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrSend, err)
	}
	return nil
}

func addrString(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}
	if udp, ok := addr.(*net.UDPAddr); ok {
		if udp == nil {
			return "unknown"
		}
		return udp.IP.String()
	}
	return addr.String()
}

// logName drops the trailing dot for log output; the root stays ".".
func logName(name string) string {
	if trimmed := utils.TrimDNSName(name); trimmed != "" {
		return trimmed
	}
	return "."
}

var _ DNSResponder = (*Router)(nil)
