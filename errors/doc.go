// Package errors provides the structured error type used across tokengate.
// It carries machine-readable codes, HTTP status mapping and retryable
// detection so handlers can turn any failure into a consistent JSON body.
package errors
