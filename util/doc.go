// Package util provides small generic helpers shared across tokengate:
// slice operations, size parsing and secret masking for logs.
package util
