package jurisrank

import "github.com/kailas-cloud/jurisrank/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrConfig            = domain.ErrConfig
	ErrUpstream          = domain.ErrUpstream
	ErrMalformedResponse = domain.ErrMalformedResponse
	ErrInvalidQuery      = domain.ErrInvalidQuery
	ErrInvalidDecision   = domain.ErrInvalidDecision
)
