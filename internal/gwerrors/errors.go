// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package gwerrors defines the gateway's error taxonomy: every error that can
// short-circuit a request carries a Kind, an HTTP Status, a user-safe
// Message, and structured Details for the log sink.
package gwerrors

import "fmt"

// Kind classifies an error for status-code mapping and log classification.
type Kind string

const (
	KindNoRouteMatched             Kind = "NoRouteMatched"
	KindAuthMissing                Kind = "AuthMissing"
	KindAuthInvalid                Kind = "AuthInvalid"
	KindForbidden                  Kind = "Forbidden"
	KindInvalidFilterConfiguration Kind = "InvalidFilterConfiguration"
	KindBodyTooLarge               Kind = "BodyTooLarge"
	KindUpstreamTransport          Kind = "UpstreamTransport"
	KindUpstreamTimeout            Kind = "UpstreamTimeout"
	KindUpstreamRateLimited        Kind = "UpstreamRateLimited"
	KindTranslationFailure         Kind = "TranslationFailure"
	KindInternalInvariant          Kind = "InternalInvariant"
)

// statusByKind maps each error kind to the HTTP status a client sees.
var statusByKind = map[Kind]int{
	KindNoRouteMatched:             404,
	KindAuthMissing:                401,
	KindAuthInvalid:                401,
	KindForbidden:                  403,
	KindInvalidFilterConfiguration: 500,
	KindBodyTooLarge:               413,
	KindUpstreamTransport:          502,
	KindUpstreamTimeout:            504,
	KindUpstreamRateLimited:        429,
	KindTranslationFailure:         502,
	KindInternalInvariant:          500,
}

// retryableByKind marks which kinds are classified as retryable. It is a
// classification only: the gateway does not retry upstream calls itself,
// so an error of one of these kinds is still returned to the client.
var retryableByKind = map[Kind]bool{
	KindUpstreamTransport:   true,
	KindUpstreamTimeout:     true,
	KindUpstreamRateLimited: true,
}

// Error is the structured error type threaded through the policy engine,
// route matcher, and LLM translator.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	cause   error
}

// New creates a structured error of the given kind with a user-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and user-safe message to an underlying cause, keeping
// the cause available via errors.Unwrap for logging but never in Message.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithDetails returns a copy of e with Details set, for fluent construction.
func (e *Error) WithDetails(details map[string]any) *Error {
	c := *e
	c.Details = details
	return &c
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Status returns the HTTP status code this error kind maps to.
func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return 500
}

// Retryable reports whether this error kind is classified as retryable;
// nothing in the gateway retries the call on that basis.
func (e *Error) Retryable() bool {
	return retryableByKind[e.Kind]
}
