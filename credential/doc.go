// Package credential holds the principals that may sign in: a username, a
// password hash and an ordered list of role names.
//
// Two Store implementations exist. MemoryStore keeps principals in a map and
// suits demos and tests. SQLStore persists them through gorm in the classic
// users/authorities table pair. Usernames are case-sensitive in both;
// SQLStore compares in Go after the query so a case-insensitive collation
// cannot widen a match.
//
// Plaintext passwords never enter a Store. Provision hashes the configured
// seed users at startup and inserts only the hashes.
package credential
