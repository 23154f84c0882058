package domain

// ResolutionResult is what an upstream resolver returns for one query.
type ResolutionResult struct {
	RCode   RCode
	Answers []ResourceRecord
}
