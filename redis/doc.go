// Package redis wraps go-redis with service logging, pool configuration
// and a lifecycle Component. TypedStore keeps JSON values under a key
// prefix; the revocation list uses it to hold revoked token ids until the
// tokens would have expired anyway.
package redis
