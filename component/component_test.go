package component

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

type describedComponent struct {
	mockComponent
}

func (d *describedComponent) Describe() Description {
	return Description{Type: "database", Details: "sqlite :memory:"}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&mockComponent{name: "db"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "db"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	c := &mockComponent{name: "redis"}
	r.Register(c)

	if r.Get("redis") != c {
		t.Error("expected registered component")
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unknown component")
	}
}

func TestStartAllAndStopAll_Order(t *testing.T) {
	var started, stopped []string
	r := NewRegistry()
	for _, name := range []string{"database", "redis", "http-server"} {
		r.Register(&mockComponent{name: name, startOrder: &started, stopOrder: &stopped})
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if strings.Join(started, ",") != "database,redis,http-server" {
		t.Errorf("unexpected start order %v", started)
	}

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if strings.Join(stopped, ",") != "http-server,redis,database" {
		t.Errorf("unexpected stop order %v", stopped)
	}
}

func TestStartAllError_StopsOnlyStarted(t *testing.T) {
	var stopped []string
	r := NewRegistry()
	r.Register(&mockComponent{name: "database", stopOrder: &stopped})
	r.Register(&mockComponent{name: "redis", startErr: fmt.Errorf("refused"), stopOrder: &stopped})

	err := r.StartAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "redis") {
		t.Fatalf("expected start error naming redis, got %v", err)
	}

	r.StopAll(context.Background())
	if len(stopped) != 1 || stopped[0] != "database" {
		t.Errorf("expected only database to be stopped, got %v", stopped)
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "a", stopErr: fmt.Errorf("stuck")})
	r.StartAll(context.Background())

	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected aggregated stop error")
	}
}

func TestHealthAllAndOverall(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "a", health: Health{Name: "a", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "b", health: Health{Name: "b", Status: StatusDegraded}})

	healths := r.HealthAll(context.Background())
	if len(healths) != 2 {
		t.Fatalf("expected 2 results, got %d", len(healths))
	}
	if got := Overall(healths); got != StatusDegraded {
		t.Errorf("expected degraded, got %s", got)
	}

	healths = append(healths, Health{Name: "c", Status: StatusUnhealthy})
	if got := Overall(healths); got != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", got)
	}
	if got := Overall(nil); got != StatusHealthy {
		t.Errorf("expected healthy for no components, got %s", got)
	}
}

func TestDescribe(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "plain"})
	r.Register(&describedComponent{mockComponent{name: "database"}})

	descs := r.Describe()
	if len(descs) != 1 {
		t.Fatalf("expected 1 description, got %d", len(descs))
	}
	if descs[0].Name != "database" || descs[0].Type != "database" {
		t.Errorf("unexpected description %+v", descs[0])
	}
}
