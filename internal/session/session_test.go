package session

import (
	"errors"
	"testing"
	"time"

	"bizmap/internal/engine"
)

func build(id string) *engine.View { return engine.New(id, nil, engine.Options{}, 0, 0, 6) }

func TestCreateAndGet(t *testing.T) {
	m := NewManager(10, time.Minute)
	v := m.Create(build)
	if v.ID() == "" {
		t.Fatalf("expected generated id")
	}
	got, err := m.Get(v.ID())
	if err != nil || got != v {
		t.Fatalf("expected same view back, err=%v", err)
	}
	if _, err := m.Get("missing"); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected ErrUnknownSession, got %v", err)
	}
	if _, err := m.Get(""); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected ErrUnknownSession for empty id, got %v", err)
	}
}

func TestCapacityEvictsLeastRecent(t *testing.T) {
	m := NewManager(2, time.Minute)
	a := m.Create(build)
	b := m.Create(build)
	if _, err := m.Get(a.ID()); err != nil {
		t.Fatalf("get a: %v", err)
	}
	c := m.Create(build)
	if _, err := m.Get(b.ID()); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected b evicted, got %v", err)
	}
	for _, v := range []*engine.View{a, c} {
		if _, err := m.Get(v.ID()); err != nil {
			t.Fatalf("expected %s kept: %v", v.ID(), err)
		}
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", m.Len())
	}
}

func TestTTLExpiryAndSweep(t *testing.T) {
	now := time.Unix(1000, 0)
	m := NewManager(10, time.Minute)
	m.now = func() time.Time { return now }
	a := m.Create(build)
	b := m.Create(build)

	now = now.Add(50 * time.Second)
	if _, err := m.Get(a.ID()); err != nil {
		t.Fatalf("expected a alive: %v", err)
	}
	now = now.Add(20 * time.Second)
	if _, err := m.Get(b.ID()); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected b expired, got %v", err)
	}
	now = now.Add(2 * time.Minute)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("expected sweep to evict a, got %d", n)
	}
	if m.Len() != 0 {
		t.Fatalf("expected empty manager, got %d", m.Len())
	}
}
