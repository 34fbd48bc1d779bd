// Package endpoint provides the probe and metadata handlers every tokengate
// server exposes: /health, /alive, /ready and /info.
package endpoint
