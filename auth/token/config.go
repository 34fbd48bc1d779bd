package token

import (
	"errors"
	"fmt"
	"time"
)

// SigningMethod names a supported JWS algorithm.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
	RS256 SigningMethod = "RS256"
	RS384 SigningMethod = "RS384"
	RS512 SigningMethod = "RS512"
	ES256 SigningMethod = "ES256"
	ES384 SigningMethod = "ES384"
	ES512 SigningMethod = "ES512"
)

// MinSecretLength is the shortest accepted HMAC secret in bytes.
const MinSecretLength = 32

// DefaultMaxRetiredKeys applies when max_retired_keys is unset.
const DefaultMaxRetiredKeys = 2

// KeyConfig describes one signing key.
type KeyConfig struct {
	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `yaml:"method" mapstructure:"method"`

	// Secret is the HMAC key for HS* methods.
	Secret string `yaml:"secret" mapstructure:"secret"`

	// PrivateKeyFile is a PEM file holding an RSA or EC private key for RS*/ES* methods.
	PrivateKeyFile string `yaml:"private_key_file" mapstructure:"private_key_file"`

	// KeyID is published in the token header. Derived from the key when empty.
	KeyID string `yaml:"key_id" mapstructure:"key_id"`
}

// Config configures token issuance and validation.
type Config struct {
	KeyConfig `yaml:",inline" mapstructure:",squash"`

	// Retired keys still verify tokens but never sign.
	Retired []KeyConfig `yaml:"retired" mapstructure:"retired"`

	// TTL is the token lifetime (default: 15m).
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`

	// ClockSkew tolerates issuers whose clock runs ahead (default: 30s).
	ClockSkew time.Duration `yaml:"clock_skew" mapstructure:"clock_skew"`

	// Issuer is the "iss" claim; checked on validation when set.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`

	// Audience is the "aud" claim; checked on validation when set.
	Audience []string `yaml:"audience" mapstructure:"audience"`

	// MaxRetiredKeys bounds how many rotated-out keys keep verifying
	// (default: 2). Zero makes a rotated-out key stop verifying at once.
	MaxRetiredKeys *int `yaml:"max_retired_keys" mapstructure:"max_retired_keys"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	for i := range c.Retired {
		if c.Retired[i].Method == "" {
			c.Retired[i].Method = HS256
		}
	}
	if c.TTL == 0 {
		c.TTL = 15 * time.Minute
	}
	if c.ClockSkew == 0 {
		c.ClockSkew = 30 * time.Second
	}
	if c.MaxRetiredKeys == nil {
		n := DefaultMaxRetiredKeys
		c.MaxRetiredKeys = &n
	}
}

// Validate checks that a usable signing key is configured.
func (c *Config) Validate() error {
	if err := c.KeyConfig.validate(); err != nil {
		return err
	}
	for i := range c.Retired {
		if err := c.Retired[i].validate(); err != nil {
			return fmt.Errorf("retired[%d]: %w", i, err)
		}
	}
	if c.TTL <= 0 {
		return errors.New("ttl must be positive")
	}
	if c.ClockSkew < 0 {
		return errors.New("clock_skew must not be negative")
	}
	if c.MaxRetiredKeys != nil && *c.MaxRetiredKeys < 0 {
		return errors.New("max_retired_keys must not be negative")
	}
	return nil
}

func (c *Config) maxRetired() int {
	if c.MaxRetiredKeys == nil {
		return DefaultMaxRetiredKeys
	}
	return *c.MaxRetiredKeys
}

func (k *KeyConfig) validate() error {
	switch {
	case k.Method.isHMAC():
		if k.Secret == "" {
			return errors.New("secret is required for HMAC signing methods")
		}
		if len(k.Secret) < MinSecretLength {
			return fmt.Errorf("secret must be at least %d bytes", MinSecretLength)
		}
	case k.Method.isRSA(), k.Method.isECDSA():
		if k.PrivateKeyFile == "" {
			return fmt.Errorf("private_key_file is required for %s", k.Method)
		}
	default:
		return fmt.Errorf("unsupported signing method: %s", k.Method)
	}
	return nil
}

func (m SigningMethod) isHMAC() bool  { return m == HS256 || m == HS384 || m == HS512 }
func (m SigningMethod) isRSA() bool   { return m == RS256 || m == RS384 || m == RS512 }
func (m SigningMethod) isECDSA() bool { return m == ES256 || m == ES384 || m == ES512 }
