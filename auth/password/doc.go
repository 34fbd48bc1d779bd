// Package password hashes and verifies passwords.
//
// Two algorithms are supported: bcrypt and argon2id. Parameters (cost,
// memory, iterations, salt) are embedded in every stored hash, so hashes
// produced under older settings keep verifying after the configuration
// changes. DelegatingHasher picks the verifier from the stored hash
// format and reports hashes worth upgrading through NeedsRehash.
//
// Verification fails closed: a mismatch, an unrecognised format or a
// corrupt hash all yield false.
//
//	hasher, err := password.NewHasher(cfg.Auth.Password)
//	hash, err := hasher.Hash("password1")
//	ok := hasher.Verify("password1", hash)
package password
