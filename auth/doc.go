// Package auth groups the authentication building blocks:
//
//   - auth/password   hashes and verifies passwords (bcrypt, argon2id)
//   - auth/token      issues and validates signed tokens, manages the keyring
//   - auth/revocation remembers signed-out token ids until they expire
//   - auth/authctx    carries validated claims on a context.Context
//
// This package holds the combined Config and the TokenValidator and
// TokenIssuer contracts the HTTP layer depends on.
package auth
