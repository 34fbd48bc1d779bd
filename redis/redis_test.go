package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/tokengate/component"
	"github.com/kbukum/tokengate/logger"
)

type entry struct {
	Subject string `json:"sub"`
	Until   int64  `json:"until"`
}

// newTestClient creates a Client backed by miniredis.
func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)

	client, err := New(Config{Addr: mini.Addr()}, logger.NewNop())
	if err != nil {
		t.Fatalf("failed to create redis client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, mini
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.DialTimeout = "fast"
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid dial_timeout error")
	}
}

func TestClient_PingAndClose(t *testing.T) {
	client, _ := newTestClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestClient_GetMissingIsNil(t *testing.T) {
	client, _ := newTestClient(t)
	_, err := client.Get(context.Background(), "nope")
	if !IsNil(err) {
		t.Fatalf("expected redis nil, got %v", err)
	}
}

func TestTypedStore_SaveLoadHas(t *testing.T) {
	client, mini := newTestClient(t)
	store := NewTypedStore[entry](client, "revoked")
	ctx := context.Background()

	if err := store.Save(ctx, "jti-1", &entry{Subject: "admin", Until: 42}, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !mini.Exists("revoked:jti-1") {
		t.Fatal("expected prefixed key in redis")
	}

	got, err := store.Load(ctx, "jti-1")
	if err != nil || got == nil {
		t.Fatalf("Load: %v %v", got, err)
	}
	if got.Subject != "admin" || got.Until != 42 {
		t.Errorf("unexpected entry %+v", got)
	}
	if ok, err := store.Has(ctx, "jti-1"); !ok || err != nil {
		t.Errorf("Has = %v, %v", ok, err)
	}
}

func TestTypedStore_LoadMissing(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewTypedStore[entry](client, "revoked")

	got, err := store.Load(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing key, got %+v", got)
	}
}

func TestTypedStore_TTL(t *testing.T) {
	client, mini := newTestClient(t)
	store := NewTypedStore[entry](client, "revoked")
	ctx := context.Background()

	if err := store.Save(ctx, "k1", &entry{Subject: "u"}, 2*time.Second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	mini.FastForward(3 * time.Second)

	if ok, _ := store.Has(ctx, "k1"); ok {
		t.Fatal("expected key to expire")
	}
}

func TestTypedStore_DeleteAndNoPrefix(t *testing.T) {
	client, mini := newTestClient(t)
	store := NewTypedStore[entry](client, "")
	ctx := context.Background()

	_ = store.Save(ctx, "bare", &entry{Subject: "u"}, 0)
	if !mini.Exists("bare") {
		t.Fatal("expected bare key")
	}
	if err := store.Delete(ctx, "bare"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if mini.Exists("bare") {
		t.Error("key should be deleted")
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	mini := miniredis.RunT(t)
	c, err := NewComponent(Config{Addr: mini.Addr()}, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s: %s", h.Status, h.Message)
	}

	mini.Close()
	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy after server stop, got %s", h.Status)
	}
	if err := c.Stop(ctx); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
