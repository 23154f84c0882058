package domain

import "fmt"

// DNSRequest is an inbound query after wire decoding.
type DNSRequest struct {
	ID               uint16
	Opcode           uint8
	RecursionDesired bool
	CheckingDisabled bool

	// UDPSize is the client's advertised EDNS0 buffer size, 0 without EDNS.
	UDPSize uint16

	Questions []Question
}

// FirstQuestion returns the only question the forwarder acts on. Any further
// questions are carried into the response but never resolved.
func (r DNSRequest) FirstQuestion() (Question, error) {
	if len(r.Questions) == 0 {
		return Question{}, fmt.Errorf("%w: request %d has no question", ErrMalformedRequest, r.ID)
	}
	q := r.Questions[0]
	if err := q.Validate(); err != nil {
		return Question{}, fmt.Errorf("%w: request %d: %v", ErrMalformedRequest, r.ID, err)
	}
	return q, nil
}
