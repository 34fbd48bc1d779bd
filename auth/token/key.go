package token

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/go-jose/go-jose/v4"
	gojwt "github.com/golang-jwt/jwt/v5"
)

// Key is a signing key with its identifier and algorithm.
type Key struct {
	ID     string
	Method SigningMethod

	sign   interface{}
	verify interface{}
}

// NewHMACKey creates a symmetric key. An empty id is derived from the secret.
func NewHMACKey(id string, method SigningMethod, secret []byte) (*Key, error) {
	if !method.isHMAC() {
		return nil, fmt.Errorf("token: %s is not an HMAC method", method)
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("token: HMAC secret must be at least %d bytes", MinSecretLength)
	}
	if id == "" {
		sum := sha256.Sum256(append([]byte("tokengate-kid:"), secret...))
		id = "hs-" + hex.EncodeToString(sum[:8])
	}
	s := append([]byte(nil), secret...)
	return &Key{ID: id, Method: method, sign: s, verify: s}, nil
}

// NewRSAKey creates an RSA key. An empty id is the RFC 7638 thumbprint.
func NewRSAKey(id string, method SigningMethod, priv *rsa.PrivateKey) (*Key, error) {
	if !method.isRSA() {
		return nil, fmt.Errorf("token: %s is not an RSA method", method)
	}
	if priv == nil {
		return nil, fmt.Errorf("token: nil RSA key")
	}
	if priv.N.BitLen() < 2048 {
		return nil, fmt.Errorf("token: RSA key must be at least 2048 bits")
	}
	return newAsymmetricKey(id, method, priv, &priv.PublicKey)
}

// NewECDSAKey creates an ECDSA key. The curve must match the method.
func NewECDSAKey(id string, method SigningMethod, priv *ecdsa.PrivateKey) (*Key, error) {
	if !method.isECDSA() {
		return nil, fmt.Errorf("token: %s is not an ECDSA method", method)
	}
	if priv == nil {
		return nil, fmt.Errorf("token: nil ECDSA key")
	}
	want := map[SigningMethod]elliptic.Curve{
		ES256: elliptic.P256(),
		ES384: elliptic.P384(),
		ES512: elliptic.P521(),
	}[method]
	if priv.Curve != want {
		return nil, fmt.Errorf("token: %s requires curve %s", method, want.Params().Name)
	}
	return newAsymmetricKey(id, method, priv, &priv.PublicKey)
}

func newAsymmetricKey(id string, method SigningMethod, priv, pub interface{}) (*Key, error) {
	if id == "" {
		tp, err := (&jose.JSONWebKey{Key: pub}).Thumbprint(crypto.SHA256)
		if err != nil {
			return nil, fmt.Errorf("token: key thumbprint: %w", err)
		}
		id = base64.RawURLEncoding.EncodeToString(tp)
	}
	return &Key{ID: id, Method: method, sign: priv, verify: pub}, nil
}

// KeyFromConfig builds a Key from a secret or a PEM private key file.
func KeyFromConfig(cfg KeyConfig) (*Key, error) {
	if cfg.Method == "" {
		cfg.Method = HS256
	}
	switch {
	case cfg.Method.isHMAC():
		return NewHMACKey(cfg.KeyID, cfg.Method, []byte(cfg.Secret))
	case cfg.Method.isRSA():
		pem, err := os.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("token: read private key: %w", err)
		}
		priv, err := gojwt.ParseRSAPrivateKeyFromPEM(pem)
		if err != nil {
			return nil, fmt.Errorf("token: parse RSA private key: %w", err)
		}
		return NewRSAKey(cfg.KeyID, cfg.Method, priv)
	case cfg.Method.isECDSA():
		pem, err := os.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("token: read private key: %w", err)
		}
		priv, err := gojwt.ParseECPrivateKeyFromPEM(pem)
		if err != nil {
			return nil, fmt.Errorf("token: parse EC private key: %w", err)
		}
		return NewECDSAKey(cfg.KeyID, cfg.Method, priv)
	default:
		return nil, fmt.Errorf("token: unsupported signing method: %s", cfg.Method)
	}
}

// PublicKey returns the verification key of an asymmetric key, or nil for HMAC.
func (k *Key) PublicKey() crypto.PublicKey {
	if k.Method.isHMAC() {
		return nil
	}
	return k.verify
}

func (k *Key) jwtMethod() gojwt.SigningMethod {
	return gojwt.GetSigningMethod(string(k.Method))
}
