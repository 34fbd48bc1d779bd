// Package resilience provides a circuit breaker for calls to backing
// services. The breaker opens after consecutive failures and lets a single
// probe through once its cool-down has passed.
package resilience
