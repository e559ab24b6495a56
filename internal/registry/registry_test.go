package registry

import (
	"fmt"
	"testing"

	"bizmap/internal/business"
	"bizmap/internal/numbering"
	"bizmap/internal/scene"
)

func entities(ids ...string) []business.Business {
	out := make([]business.Business, 0, len(ids))
	for i, id := range ids {
		out = append(out, business.Business{
			ID:       business.ID(id),
			Name:     "Biz " + id,
			Category: &business.Category{Name: "Retail"},
			Location: &business.Geometry{Type: "Point", Coordinates: []float64{-6.2 + float64(i)*0.01, 53.3}},
		})
	}
	return out
}

func assertExactly(t *testing.T, r *Registry, s *scene.Scene, ids ...string) {
	t.Helper()
	if r.Len() != len(ids) {
		t.Fatalf("expected %d markers, got %d", len(ids), r.Len())
	}
	for _, id := range ids {
		if _, ok := r.Get(business.ID(id)); !ok {
			t.Fatalf("expected marker for %s", id)
		}
	}
	if n := s.CountKind(scene.KindBusiness); n != len(ids) {
		t.Fatalf("expected %d layers on surface, got %d", len(ids), n)
	}
}

func TestReplaceAllLeavesNoStaleMarkers(t *testing.T) {
	s := scene.New(0, 0, 6)
	r := New(s)
	r.ReplaceAll(entities("a", "b", "c"), numbering.Numbering{})
	assertExactly(t, r, s, "a", "b", "c")

	r.ReplaceAll(entities("c", "d"), numbering.Numbering{})
	assertExactly(t, r, s, "c", "d")
	if _, ok := r.Get("a"); ok {
		t.Fatalf("stale marker a survived ReplaceAll")
	}
}

func TestReplaceAllAppliesNumbering(t *testing.T) {
	s := scene.New(0, 0, 6)
	r := New(s)
	full := entities("a", "b", "c")
	r.ReplaceAll(full, numbering.Assign(full, entities("c", "a")))
	for id, want := range map[string]int{"c": 1, "a": 2} {
		m, _ := r.Get(business.ID(id))
		if !m.Ranked || m.Rank != want || m.Visual.Badge == nil || *m.Visual.Badge != want {
			t.Fatalf("expected %s ranked %d, got %+v", id, want, m)
		}
	}
	if m, _ := r.Get("b"); m.Ranked || m.Visual.Badge != nil {
		t.Fatalf("expected b unranked, got %+v", m)
	}
}

func TestReplaceAllDuplicateIDsKeepOneMarker(t *testing.T) {
	s := scene.New(0, 0, 6)
	r := New(s)
	list := append(entities("a", "b"), entities("a")...)
	r.ReplaceAll(list, numbering.Numbering{})
	assertExactly(t, r, s, "a", "b")
}

func TestClear(t *testing.T) {
	s := scene.New(0, 0, 6)
	r := New(s)
	var ids []string
	for i := 0; i < 20; i++ {
		ids = append(ids, fmt.Sprint(i))
	}
	r.ReplaceAll(entities(ids...), numbering.Numbering{})
	r.Clear()
	assertExactly(t, r, s)
	if len(r.IDs()) != 0 {
		t.Fatalf("expected no ids after clear")
	}
}
