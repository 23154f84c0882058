package domain

import "errors"

// Error kinds surfaced by the forwarder. Callers wrap them with fmt.Errorf("%w")
// and test them with errors.Is.
var (
	// ErrConfig marks invalid or missing startup configuration. Always fatal.
	ErrConfig = errors.New("configuration error")

	// ErrMalformedRequest marks an inbound request with no usable question.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrResolve marks a failed upstream query: network error, timeout or bad reply.
	ErrResolve = errors.New("upstream resolution failed")

	// ErrSend marks a failure encoding or transmitting the response to the client.
	ErrSend = errors.New("failed to send response")
)
