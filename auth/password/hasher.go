package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes passwords for storage and verifies candidates against
// stored hashes.
type Hasher interface {
	// Hash returns a salted, self-describing hash of password.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. It never errors:
	// anything other than a match is false.
	Verify(password, hash string) bool
}

var (
	// ErrTooShort is returned by Hash when the password is below the minimum length.
	ErrTooShort = errors.New("password: too short")
	// ErrTooLong is returned by Hash for passwords bcrypt cannot represent.
	ErrTooLong = errors.New("password: longer than 72 bytes")
)

const (
	defaultMinLength = 8
	bcryptMaxBytes   = 72

	// Upper bound on argon2 memory read from a stored hash (2 GiB).
	maxArgon2Memory = 2 * 1024 * 1024
)

// --- bcrypt ---

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost      int
	minLength int
}

// BcryptOption configures the bcrypt hasher.
type BcryptOption func(*BcryptHasher)

// WithCost sets the bcrypt cost parameter (default: 12, range: 4-31).
func WithCost(cost int) BcryptOption {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// WithBcryptMinLength sets the minimum accepted password length for Hash.
func WithBcryptMinLength(n int) BcryptOption {
	return func(h *BcryptHasher) { h.minLength = n }
}

// NewBcryptHasher creates a bcrypt-based password hasher.
func NewBcryptHasher(opts ...BcryptOption) *BcryptHasher {
	h := &BcryptHasher{cost: 12, minLength: defaultMinLength}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Cost returns the cost used for new hashes.
func (h *BcryptHasher) Cost() int { return h.cost }

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) < h.minLength {
		return "", fmt.Errorf("%w: minimum length is %d", ErrTooShort, h.minLength)
	}
	if len(password) > bcryptMaxBytes {
		return "", ErrTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, hash string) bool {
	if len(password) > bcryptMaxBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// --- argon2id ---

// Argon2Hasher implements Hasher using argon2id.
type Argon2Hasher struct {
	time      uint32
	memory    uint32
	threads   uint8
	keyLen    uint32
	saltLen   int
	minLength int
}

// Argon2Option configures the argon2id hasher.
type Argon2Option func(*Argon2Hasher)

// WithArgon2Time sets the number of iterations (default: 1).
func WithArgon2Time(t uint32) Argon2Option {
	return func(h *Argon2Hasher) { h.time = t }
}

// WithArgon2Memory sets the memory usage in KiB (default: 64 MiB).
func WithArgon2Memory(m uint32) Argon2Option {
	return func(h *Argon2Hasher) { h.memory = m }
}

// WithArgon2Threads sets the parallelism (default: 4).
func WithArgon2Threads(t uint8) Argon2Option {
	return func(h *Argon2Hasher) { h.threads = t }
}

// WithArgon2MinLength sets the minimum accepted password length for Hash.
func WithArgon2MinLength(n int) Argon2Option {
	return func(h *Argon2Hasher) { h.minLength = n }
}

// NewArgon2Hasher creates an argon2id-based password hasher.
func NewArgon2Hasher(opts ...Argon2Option) *Argon2Hasher {
	h := &Argon2Hasher{
		time:      1,
		memory:    64 * 1024,
		threads:   4,
		keyLen:    32,
		saltLen:   16,
		minLength: defaultMinLength,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	if len(password) < h.minLength {
		return "", fmt.Errorf("%w: minimum length is %d", ErrTooShort, h.minLength)
	}

	salt, err := generateRandomBytes(h.saltLen)
	if err != nil {
		return "", fmt.Errorf("password: generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, h.keyLen)
	p := argon2Params{memory: h.memory, time: h.time, threads: h.threads}
	return p.encode(salt, key), nil
}

func (h *Argon2Hasher) Verify(password, encodedHash string) bool {
	p, salt, expected, err := decodeArgon2(encodedHash)
	if err != nil {
		return false
	}
	key := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
}

// encode renders $argon2id$v=19$m=MEMORY,t=TIME,p=THREADS$SALT$KEY.
func (p argon2Params) encode(salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func decodeArgon2(encoded string) (argon2Params, []byte, []byte, error) {
	var p argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, errors.New("password: invalid argon2id hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errors.New("password: unsupported argon2 version")
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, fmt.Errorf("password: parse argon2id params: %w", err)
	}
	if p.time == 0 || p.threads == 0 || p.memory == 0 || p.memory > maxArgon2Memory {
		return p, nil, nil, errors.New("password: argon2id params out of range")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("password: decode salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, errors.New("password: decode key")
	}
	return p, salt, key, nil
}

func generateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}
