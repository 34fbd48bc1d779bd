package token

import (
	"github.com/go-jose/go-jose/v4"
)

// JWKS renders the public halves of the keyring's asymmetric keys as a
// JSON Web Key Set. HMAC keys are never included.
func JWKS(kr *Keyring) jose.JSONWebKeySet {
	set := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{}}
	for _, k := range kr.Keys() {
		pub := k.PublicKey()
		if pub == nil {
			continue
		}
		set.Keys = append(set.Keys, jose.JSONWebKey{
			Key:       pub,
			KeyID:     k.ID,
			Algorithm: string(k.Method),
			Use:       "sig",
		})
	}
	return set
}
