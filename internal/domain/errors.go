package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig signals a missing or invalid provider credential or setting.
	ErrConfig = errors.New("configuration error")
	// ErrUpstream signals a failure of an external collaborator (vector index, embedder, reranker).
	ErrUpstream = errors.New("upstream error")
	// ErrMalformedResponse signals a provider response that could not be interpreted.
	ErrMalformedResponse = errors.New("malformed provider response")
	// ErrInvalidQuery signals a search query that failed validation.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidDecision signals a decision that cannot be written to the index.
	ErrInvalidDecision = errors.New("invalid decision")
)

// Upstream service names used in UpstreamError.
const (
	ServiceVectorIndex = "vector_index"
	ServiceEmbedding   = "embedding"
	ServiceRerank      = "rerank"
)

// UpstreamError wraps a failed call to an external service.
// It matches both ErrUpstream and the underlying cause.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s: %v", ErrUpstream.Error(), e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() []error { return []error{ErrUpstream, e.Err} }

// NewUpstreamError creates an upstream error for the named service.
func NewUpstreamError(service string, err error) error {
	return &UpstreamError{Service: service, Err: err}
}

// MalformedResponseError describes why a provider response was rejected.
type MalformedResponseError struct {
	Provider string
	Reason   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s from %s: %s", ErrMalformedResponse.Error(), e.Provider, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return ErrMalformedResponse }

// NewMalformedResponse creates a malformed response error.
func NewMalformedResponse(provider, reason string) error {
	return &MalformedResponseError{Provider: provider, Reason: reason}
}

// ConfigError names the configuration field that is missing or invalid.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrConfig.Error(), e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// NewConfigError creates a configuration error for field.
func NewConfigError(field, reason string) error {
	return &ConfigError{Field: field, Reason: reason}
}
