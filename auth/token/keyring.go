package token

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// keyringState is an immutable snapshot. Readers load it without locking.
type keyringState struct {
	active  *Key
	retired []*Key // newest first
	byID    map[string]*Key
}

// Keyring holds the active signing key plus a bounded set of retired keys
// that still verify. Rotation swaps in a new snapshot atomically.
type Keyring struct {
	state      atomic.Pointer[keyringState]
	mu         sync.Mutex // serialises writers
	maxRetired int
}

// NewKeyring creates a keyring with active as the signing key.
func NewKeyring(active *Key, maxRetired int) *Keyring {
	if maxRetired < 0 {
		maxRetired = 0
	}
	kr := &Keyring{maxRetired: maxRetired}
	kr.state.Store(&keyringState{
		active: active,
		byID:   map[string]*Key{active.ID: active},
	})
	return kr
}

// KeyringFromConfig builds the keyring for cfg: the configured key signs,
// Retired keys (oldest last) verify only.
func KeyringFromConfig(cfg Config) (*Keyring, error) {
	active, err := KeyFromConfig(cfg.KeyConfig)
	if err != nil {
		return nil, err
	}
	kr := NewKeyring(active, cfg.maxRetired())
	for i := range cfg.Retired {
		k, err := KeyFromConfig(cfg.Retired[i])
		if err != nil {
			return nil, fmt.Errorf("retired[%d]: %w", i, err)
		}
		if err := kr.addRetired(k); err != nil {
			return nil, err
		}
	}
	return kr, nil
}

// Active returns the current signing key.
func (kr *Keyring) Active() *Key {
	return kr.state.Load().active
}

// Lookup finds a key by id among the active and retired keys.
func (kr *Keyring) Lookup(kid string) (*Key, bool) {
	k, ok := kr.state.Load().byID[kid]
	return k, ok
}

// Keys returns the active key followed by retired keys, newest first.
func (kr *Keyring) Keys() []*Key {
	s := kr.state.Load()
	out := make([]*Key, 0, 1+len(s.retired))
	out = append(out, s.active)
	return append(out, s.retired...)
}

// Rotate makes k the signing key. The previous active key is retired;
// retired keys beyond the limit are dropped and stop verifying.
func (kr *Keyring) Rotate(k *Key) error {
	kr.mu.Lock()
	defer kr.mu.Unlock()

	cur := kr.state.Load()
	if _, exists := cur.byID[k.ID]; exists {
		return fmt.Errorf("token: key id %q already in keyring", k.ID)
	}
	retired := append([]*Key{cur.active}, cur.retired...)
	kr.state.Store(kr.snapshot(k, retired))
	return nil
}

func (kr *Keyring) addRetired(k *Key) error {
	kr.mu.Lock()
	defer kr.mu.Unlock()

	cur := kr.state.Load()
	if _, exists := cur.byID[k.ID]; exists {
		return fmt.Errorf("token: key id %q already in keyring", k.ID)
	}
	retired := append(append([]*Key(nil), cur.retired...), k)
	kr.state.Store(kr.snapshot(cur.active, retired))
	return nil
}

func (kr *Keyring) snapshot(active *Key, retired []*Key) *keyringState {
	if len(retired) > kr.maxRetired {
		retired = retired[:kr.maxRetired]
	}
	byID := make(map[string]*Key, 1+len(retired))
	byID[active.ID] = active
	for _, k := range retired {
		byID[k.ID] = k
	}
	return &keyringState{active: active, retired: retired, byID: byID}
}
