package prefs_test

import (
	"path/filepath"
	"testing"

	"airspacecache/internal/prefs"
)

func TestRoundTripsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	store, err := prefs.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got, err := store.GetStringSlice("selected_countries"); err != nil || len(got) != 0 {
		t.Fatalf("expected empty slice for unset key, got %v err %v", got, err)
	}

	if err := store.SetStringSlice("selected_countries", []string{"FR", "CH"}); err != nil {
		t.Fatalf("SetStringSlice: %v", err)
	}

	reopened, err := prefs.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.GetStringSlice("selected_countries")
	if err != nil {
		t.Fatalf("GetStringSlice after reopen: %v", err)
	}
	if len(got) != 2 || got[0] != "FR" || got[1] != "CH" {
		t.Errorf("expected [FR CH] after reopen, got %v", got)
	}
}

func TestUnrelatedKeysSurviveAWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	store, err := prefs.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := store.SetStringSlice("a", []string{"1"}); err != nil {
		t.Fatalf("SetStringSlice a: %v", err)
	}
	if err := store.SetStringSlice("b", []string{"2"}); err != nil {
		t.Fatalf("SetStringSlice b: %v", err)
	}

	a, _ := store.GetStringSlice("a")
	if len(a) != 1 || a[0] != "1" {
		t.Errorf("expected key a to survive writing key b, got %v", a)
	}
}
