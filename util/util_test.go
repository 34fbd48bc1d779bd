package util

import (
	"reflect"
	"testing"
)

func TestContains(t *testing.T) {
	if !Contains([]string{"USER", "ADMIN"}, "ADMIN") {
		t.Error("expected ADMIN to be found")
	}
	if Contains([]string{"USER"}, "user") {
		t.Error("Contains must be case-sensitive")
	}
	if Contains(nil, "x") {
		t.Error("nil slice contains nothing")
	}
}

func TestUnique_KeepsOrder(t *testing.T) {
	got := Unique([]string{"b", "a", "b", "c", "a"})
	want := []string{"b", "a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unique = %v, want %v", got, want)
	}
}

func TestCleanStrings(t *testing.T) {
	got := CleanStrings([]string{" USER ", "", "ADMIN", "USER", "   "})
	want := []string{"USER", "ADMIN"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CleanStrings = %v, want %v", got, want)
	}
	if got := CleanStrings(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
