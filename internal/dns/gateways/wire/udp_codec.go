// Package wire provides encoding and decoding of DNS messages for UDP transport.
// Message parsing and serialization is delegated to github.com/miekg/dns.
package wire

import (
	"fmt"

	"github.com/miekg/dns"

	"github.com/haukened/split-dns/internal/dns/common/log"
	"github.com/haukened/split-dns/internal/dns/domain"
)

// MaxUDPSize caps the EDNS0 buffer size advertised back to clients.
const MaxUDPSize = 4096

// udpCodec implements the DNSCodec interface for standard DNS over UDP messages.
type udpCodec struct {
	logger log.Logger
}

// NewUDPCodec creates and returns a new instance of udpCodec using the provided logger.
func NewUDPCodec(logger log.Logger) DNSCodec {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &udpCodec{
		logger: logger,
	}
}

// EncodeQuery serializes a single-question recursive query with the given id.
func (c *udpCodec) EncodeQuery(id uint16, question domain.Question) ([]byte, error) {
	if err := question.Validate(); err != nil {
		return nil, err
	}
	msg := &dns.Msg{
		MsgHdr: dns.MsgHdr{
			Id:               id,
			Opcode:           dns.OpcodeQuery,
			RecursionDesired: true,
		},
		Question: []dns.Question{{
			Name:   dns.Fqdn(question.Name),
			Qtype:  uint16(question.Type),
			Qclass: uint16(question.Class),
		}},
	}
	data, err := msg.Pack()
	if err != nil {
		return nil, fmt.Errorf("pack query: %w", err)
	}
	return data, nil
}

// DecodeResponse parses an upstream reply and checks it answers the query
// that was sent. Answer records are relayed untouched.
func (c *udpCodec) DecodeResponse(data []byte, expectedID uint16) (domain.ResolutionResult, error) {
	msg := new(dns.Msg)
	if err := msg.Unpack(data); err != nil {
		return domain.ResolutionResult{}, fmt.Errorf("unpack response: %w", err)
	}
	if msg.Id != expectedID {
		return domain.ResolutionResult{}, fmt.Errorf("response ID mismatch: got %d, want %d", msg.Id, expectedID)
	}
	if !msg.Response {
		return domain.ResolutionResult{}, fmt.Errorf("reply %d is not a response", msg.Id)
	}
	if msg.Truncated {
		c.logger.Debug(map[string]any{
			"query_id": msg.Id,
			"answers":  len(msg.Answer),
		}, "Upstream response truncated")
	}

	answers := make([]domain.ResourceRecord, 0, len(msg.Answer))
	for _, rr := range msg.Answer {
		rec, err := domain.NewResourceRecord(rr)
		if err != nil {
			return domain.ResolutionResult{}, fmt.Errorf("answer record: %w", err)
		}
		answers = append(answers, rec)
	}
	return domain.ResolutionResult{
		RCode:   domain.RCode(msg.Rcode),
		Answers: answers,
	}, nil
}

// DecodeRequest parses a client datagram. A message with zero questions
// decodes successfully; rejecting it is the router's job.
func (c *udpCodec) DecodeRequest(data []byte) (domain.DNSRequest, error) {
	msg := new(dns.Msg)
	if err := msg.Unpack(data); err != nil {
		return domain.DNSRequest{}, fmt.Errorf("unpack request: %w", err)
	}
	if msg.Response {
		return domain.DNSRequest{}, fmt.Errorf("message %d is a response, not a query", msg.Id)
	}

	req := domain.DNSRequest{
		ID:               msg.Id,
		Opcode:           uint8(msg.Opcode),
		RecursionDesired: msg.RecursionDesired,
		CheckingDisabled: msg.CheckingDisabled,
		Questions:        make([]domain.Question, 0, len(msg.Question)),
	}
	if opt := msg.IsEdns0(); opt != nil {
		req.UDPSize = opt.UDPSize()
	}
	for _, q := range msg.Question {
		req.Questions = append(req.Questions, domain.Question{
			Name:  q.Name,
			Type:  domain.RRType(q.Qtype),
			Class: domain.RRClass(q.Qclass),
		})
	}
	return req, nil
}

// EncodeResponse serializes a response for the client, truncating it to the
// client's UDP buffer size (512 bytes without EDNS0) and setting TC if needed.
func (c *udpCodec) EncodeResponse(resp domain.DNSResponse) ([]byte, error) {
	if !resp.RCode.IsValid() {
		return nil, fmt.Errorf("invalid RCode: %d", resp.RCode)
	}
	msg := &dns.Msg{
		MsgHdr: dns.MsgHdr{
			Id:                 resp.ID,
			Response:           true,
			Opcode:             int(resp.Opcode),
			RecursionDesired:   resp.RecursionDesired,
			RecursionAvailable: true,
			CheckingDisabled:   resp.CheckingDisabled,
			Rcode:              int(resp.RCode),
		},
		Question: make([]dns.Question, 0, len(resp.Questions)),
		Answer:   make([]dns.RR, 0, len(resp.Answers)),
	}
	for _, q := range resp.Questions {
		msg.Question = append(msg.Question, dns.Question{
			Name:   q.Name,
			Qtype:  uint16(q.Type),
			Qclass: uint16(q.Class),
		})
	}
	for i, a := range resp.Answers {
		rr := a.RR()
		if rr == nil {
			return nil, fmt.Errorf("answer %d is empty", i)
		}
		msg.Answer = append(msg.Answer, rr)
	}

	size := dns.MinMsgSize
	if resp.UDPSize > 0 {
		udpSize := min(max(resp.UDPSize, dns.MinMsgSize), MaxUDPSize)
		msg.SetEdns0(udpSize, false)
		size = int(udpSize)
	}
	msg.Truncate(size)
	if msg.Truncated {
		c.logger.Debug(map[string]any{
			"query_id": resp.ID,
			"size":     size,
			"answers":  len(msg.Answer),
		}, "Response truncated to client buffer size")
	}

	data, err := msg.Pack()
	if err != nil {
		return nil, fmt.Errorf("pack response: %w", err)
	}
	return data, nil
}
