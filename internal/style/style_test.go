package style_test

import (
	"testing"

	"airspacecache/entities"
	"airspacecache/internal/style"
)

func classPtr(c entities.IcaoClass) *entities.IcaoClass { return &c }

func TestResolvePrefersIcaoClass(t *testing.T) {
	r := style.New()
	s := r.Resolve(entities.TypeOther, classPtr(entities.ClassC))
	want := r.Resolve(entities.TypeP, classPtr(entities.ClassC))
	if s != want {
		t.Errorf("expected ICAO class to dominate type code: got %+v, want %+v", s, want)
	}
}

func TestResolveFallsBackToTypeWhenClassAbsent(t *testing.T) {
	r := style.New()
	s := r.Resolve(entities.TypeR, nil)
	if s.FillColor == "" {
		t.Fatal("expected a non-empty style")
	}
	fallback := r.Resolve(entities.TypeCode(999), nil)
	if s == fallback {
		t.Error("expected type R to have a distinct style from the unknown-type fallback")
	}
}

func TestResolveDefaultsToGrayForUnknown(t *testing.T) {
	r := style.New()
	s := r.Resolve(entities.TypeCode(999), nil)
	if s.FillColor != "#8E8E93" {
		t.Errorf("expected neutral gray default, got %s", s.FillColor)
	}
}
