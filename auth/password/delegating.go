package password

import (
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Identify returns the algorithm a stored hash was produced with, or ""
// when the format is not recognised (this includes "{noop}" cleartext).
func Identify(hash string) Algorithm {
	switch {
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return AlgorithmBcrypt
	case strings.HasPrefix(hash, "$argon2id$"):
		return AlgorithmArgon2id
	default:
		return ""
	}
}

// DelegatingHasher hashes with one primary algorithm and verifies with
// whichever algorithm produced the stored hash.
type DelegatingHasher struct {
	primary   Algorithm
	bcrypt    *BcryptHasher
	argon2    *Argon2Hasher
	argonWant argon2Params

	dummyOnce sync.Once
	dummy     []byte
}

// NewDelegatingHasher builds a DelegatingHasher around the two concrete hashers.
func NewDelegatingHasher(primary Algorithm, b *BcryptHasher, a *Argon2Hasher) *DelegatingHasher {
	return &DelegatingHasher{
		primary:   primary,
		bcrypt:    b,
		argon2:    a,
		argonWant: argon2Params{memory: a.memory, time: a.time, threads: a.threads},
	}
}

// Primary returns the algorithm used for new hashes.
func (d *DelegatingHasher) Primary() Algorithm { return d.primary }

func (d *DelegatingHasher) Hash(password string) (string, error) {
	if d.primary == AlgorithmArgon2id {
		return d.argon2.Hash(password)
	}
	return d.bcrypt.Hash(password)
}

func (d *DelegatingHasher) Verify(password, hash string) bool {
	switch Identify(hash) {
	case AlgorithmBcrypt:
		return d.bcrypt.Verify(password, hash)
	case AlgorithmArgon2id:
		return d.argon2.Verify(password, hash)
	default:
		// Unreadable hashes cost one bcrypt compare, like a wrong password.
		_ = bcrypt.CompareHashAndPassword(d.dummyHash(), []byte(password))
		return false
	}
}

func (d *DelegatingHasher) dummyHash() []byte {
	d.dummyOnce.Do(func() {
		d.dummy, _ = bcrypt.GenerateFromPassword([]byte("tokengate-unknown-format"), d.bcrypt.cost)
	})
	return d.dummy
}

// NeedsRehash reports whether hash was produced with a different
// algorithm or weaker parameters than the ones now configured.
func (d *DelegatingHasher) NeedsRehash(hash string) bool {
	alg := Identify(hash)
	if alg != d.primary {
		return true
	}
	switch alg {
	case AlgorithmBcrypt:
		cost, err := bcrypt.Cost([]byte(hash))
		return err != nil || cost < d.bcrypt.cost
	case AlgorithmArgon2id:
		p, _, _, err := decodeArgon2(hash)
		return err != nil || p.memory < d.argonWant.memory || p.time < d.argonWant.time
	}
	return true
}
