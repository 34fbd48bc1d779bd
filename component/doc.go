// Package component defines lifecycle-managed infrastructure pieces
// (HTTP server, database, Redis) and the Registry that starts them in
// order and stops them in reverse.
package component
