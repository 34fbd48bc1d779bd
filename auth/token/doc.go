// Package token issues and validates signed bearer tokens.
//
// Tokens are compact JWS strings (header.payload.signature) produced with
// golang-jwt. The header names the signing key through "kid" so tokens
// signed before a key rotation keep validating while the retired key
// remains in the Keyring.
//
//	keyring, err := token.KeyringFromConfig(cfg)
//	issuer := token.NewIssuer(keyring, cfg)
//	tok, err := issuer.Issue(principal)
//
//	validator := token.NewValidator(keyring, cfg)
//	claims, err := validator.Validate(tok.Value)
//	if errors.Is(err, token.ErrExpired) { ... }
//
// Validation classifies every failure as one of Malformed, Expired,
// BadSignature or NotYetValid and has no side effects.
package token
