package signin

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/tokengate/auth"
	"github.com/kbukum/tokengate/auth/password"
	"github.com/kbukum/tokengate/auth/revocation"
	"github.com/kbukum/tokengate/auth/token"
	"github.com/kbukum/tokengate/credential"
	"github.com/kbukum/tokengate/observability"
)

const secret = "0123456789abcdef0123456789abcdef"

var epoch = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

type countingHasher struct {
	password.Hasher
	verifies atomic.Int32
}

func (h *countingHasher) Verify(pw, hash string) bool {
	h.verifies.Add(1)
	return h.Hasher.Verify(pw, hash)
}

type brokenStore struct{}

func (brokenStore) Lookup(context.Context, string) (credential.Principal, bool, error) {
	return credential.Principal{}, false, errors.New("connection refused")
}
func (brokenStore) Create(context.Context, credential.Principal) error { return nil }

type fixture struct {
	svc       *Service
	hasher    *countingHasher
	validator *token.Validator
	revoked   *revocation.MemoryStore
	reader    *sdkmetric.ManualReader
}

func newFixture(t *testing.T, store credential.Store) *fixture {
	t.Helper()
	hasher := &countingHasher{Hasher: password.NewBcryptHasher(password.WithCost(4))}

	if store == nil {
		mem, _ := credential.NewMemoryStore()
		ctx := context.Background()
		for _, u := range []struct {
			name, pw string
			roles    []string
			enabled  bool
		}{
			{"user1", "password1", []string{"USER"}, true},
			{"admin", "adminPass", []string{"ADMIN", "USER"}, true},
			{"ghost", "ghostPass", []string{"USER"}, false},
		} {
			hash, err := hasher.Hash(u.pw)
			if err != nil {
				t.Fatal(err)
			}
			if err := mem.Create(ctx, credential.Principal{Username: u.name, PasswordHash: hash, Roles: u.roles, Enabled: u.enabled}); err != nil {
				t.Fatal(err)
			}
		}
		store = mem
	}

	cfg := token.Config{KeyConfig: token.KeyConfig{Secret: secret}}
	cfg.ApplyDefaults()
	kr, err := token.KeyringFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	clock := func() time.Time { return epoch }

	reader := sdkmetric.NewManualReader()
	metrics, err := observability.NewAuthMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	revoked := revocation.NewMemoryStore(clock)

	svc, err := NewService(store, hasher, token.NewIssuer(kr, cfg, token.WithClock(clock)),
		WithRevocation(revoked), WithMetrics(metrics))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	hasher.verifies.Store(0)
	return &fixture{
		svc:       svc,
		hasher:    hasher,
		validator: token.NewValidator(kr, cfg, token.WithValidatorClock(clock)),
		revoked:   revoked,
		reader:    reader,
	}
}

func (f *fixture) attempts(t *testing.T, outcome string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := f.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	want := attribute.String("outcome", outcome)
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != "signin.attempts" {
				continue
			}
			for _, dp := range md.Data.(metricdata.Sum[int64]).DataPoints {
				if v, ok := dp.Attributes.Value(want.Key); ok && v == want.Value {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestSignIn_Success(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.SignIn(context.Background(), Credential{Username: "admin", Password: "adminPass"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if res.Username != "admin" || !slices.Equal(res.Roles, []string{"ADMIN", "USER"}) {
		t.Errorf("unexpected result %+v", res)
	}
	if !res.ExpiresAt.Equal(epoch.Add(15 * time.Minute)) {
		t.Errorf("ExpiresAt = %v", res.ExpiresAt)
	}

	claims, err := f.validator.Validate(res.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.Subject != "admin" || !slices.Equal(claims.Roles, res.Roles) {
		t.Errorf("claims mismatch: %+v", claims)
	}
	if got := f.attempts(t, observability.OutcomeSuccess); got != 1 {
		t.Errorf("success attempts = %d", got)
	}
}

func TestSignIn_BadCredentialsAreIndistinguishable(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	cases := []Credential{
		{Username: "user1", Password: "wrong"},
		{Username: "nobody", Password: "password1"},
		{Username: "ghost", Password: "ghostPass"},
		{Username: "USER1", Password: "password1"},
		{Username: "", Password: "password1"},
		{Username: "user1", Password: ""},
		{Username: strings.Repeat("u", 300), Password: "password1"},
	}
	for _, c := range cases {
		res, err := f.svc.SignIn(ctx, c)
		if err != ErrBadCredentials {
			t.Errorf("SignIn(%.20q): expected exactly ErrBadCredentials, got %v", c.Username, err)
		}
		if res != nil {
			t.Errorf("SignIn(%.20q): result must be nil on failure", c.Username)
		}
	}
	if got := f.attempts(t, observability.OutcomeBadCredentials); got != int64(len(cases)) {
		t.Errorf("bad_credentials attempts = %d, want %d", got, len(cases))
	}
}

func TestSignIn_UnknownUserStillVerifies(t *testing.T) {
	f := newFixture(t, nil)
	_, _ = f.svc.SignIn(context.Background(), Credential{Username: "nobody", Password: "whatever1"})
	if f.hasher.verifies.Load() != 1 {
		t.Errorf("expected one dummy verification, got %d", f.hasher.verifies.Load())
	}
}

func TestSignIn_StoreErrorIsInternal(t *testing.T) {
	f := newFixture(t, brokenStore{})
	_, err := f.svc.SignIn(context.Background(), Credential{Username: "user1", Password: "password1"})
	if err == nil || errors.Is(err, ErrBadCredentials) {
		t.Fatalf("store failure must not look like bad credentials, got %v", err)
	}
	if got := f.attempts(t, observability.OutcomeError); got != 1 {
		t.Errorf("error attempts = %d", got)
	}
}

func TestSignIn_IssuerErrorIsInternal(t *testing.T) {
	hasher := password.NewBcryptHasher(password.WithCost(4))
	hash, _ := hasher.Hash("password1")
	store, _ := credential.NewMemoryStore(credential.Principal{Username: "user1", PasswordHash: hash, Enabled: true})
	boom := errors.New("signer offline")
	issuer := auth.TokenIssuerFunc(func(credential.Principal) (*token.Token, error) { return nil, boom })

	svc, err := NewService(store, hasher, issuer)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SignIn(context.Background(), Credential{Username: "user1", Password: "password1"}); !errors.Is(err, boom) {
		t.Fatalf("expected issuer error, got %v", err)
	}
}

func TestSignOut_RevokesUntilExpiry(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res, err := f.svc.SignIn(ctx, Credential{Username: "user1", Password: "password1"})
	if err != nil {
		t.Fatal(err)
	}
	claims, err := f.validator.Validate(res.Token)
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.SignOut(ctx, claims); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if ok, _ := f.revoked.IsRevoked(ctx, claims.ID); !ok {
		t.Error("token id should be revoked")
	}
	if err := f.svc.SignOut(ctx, nil); !errors.Is(err, ErrNoClaims) {
		t.Errorf("expected ErrNoClaims, got %v", err)
	}
}
