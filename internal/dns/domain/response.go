package domain

// DNSResponse is the message sent back to a client. It is always built from
// the request it answers so the transaction id and question section match.
type DNSResponse struct {
	ID               uint16
	Opcode           uint8
	RecursionDesired bool
	CheckingDisabled bool
	UDPSize          uint16
	RCode            RCode
	Questions        []Question
	Answers          []ResourceRecord
}

// NewResponseFromRequest returns an empty response shell correlated to req.
func NewResponseFromRequest(req DNSRequest) DNSResponse {
	questions := make([]Question, len(req.Questions))
	copy(questions, req.Questions)
	return DNSResponse{
		ID:               req.ID,
		Opcode:           req.Opcode,
		RecursionDesired: req.RecursionDesired,
		CheckingDisabled: req.CheckingDisabled,
		UDPSize:          req.UDPSize,
		RCode:            RCodeNoError,
		Questions:        questions,
	}
}

// WithResult returns a copy of the response carrying the upstream answers and rcode.
func (resp DNSResponse) WithResult(res ResolutionResult) DNSResponse {
	answers := make([]ResourceRecord, len(res.Answers))
	copy(answers, res.Answers)
	resp.Answers = answers
	resp.RCode = res.RCode
	return resp
}

// AnswerCount returns the number of answer records in the response.
func (resp DNSResponse) AnswerCount() int {
	return len(resp.Answers)
}
