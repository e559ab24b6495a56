package locator

import (
	"testing"

	"bizmap/internal/scene"
)

func TestAtMostOneIndicator(t *testing.T) {
	s := scene.New(0, 0, 6)
	ind := New(s)
	steps := []func(){
		func() { ind.SetLocation(53.35, -6.26) },
		func() { ind.SetLocation(51.89, -8.47) },
		func() { ind.Clear() },
		func() { ind.Clear() },
		func() { ind.SetLocation(1, 2) },
	}
	for i, step := range steps {
		step()
		if n := s.CountKind(scene.KindSearchLocation); n > 1 {
			t.Fatalf("step %d: expected at most one indicator, got %d", i, n)
		}
	}
	lat, lon, ok := ind.Current()
	if !ok || lat != 1 || lon != 2 {
		t.Fatalf("expected indicator at 1,2 got %v,%v ok=%v", lat, lon, ok)
	}
	if n := s.CountKind(scene.KindSearchLocation); n != 1 {
		t.Fatalf("expected exactly one indicator, got %d", n)
	}
}

func TestClearRemovesIndicator(t *testing.T) {
	s := scene.New(0, 0, 6)
	ind := New(s)
	ind.SetLocation(53.35, -6.26)
	ind.Clear()
	if _, _, ok := ind.Current(); ok {
		t.Fatalf("expected no indicator after clear")
	}
	if n := s.CountKind(scene.KindSearchLocation); n != 0 {
		t.Fatalf("expected indicator layer removed, got %d", n)
	}
}
