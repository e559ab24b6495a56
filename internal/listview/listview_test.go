package listview

import (
	"strings"
	"testing"

	"bizmap/internal/business"
	"bizmap/internal/numbering"
	"bizmap/internal/registry"
	"bizmap/internal/scene"
)

func biz(id, desc string, lat, lon float64) business.Business {
	return business.Business{
		ID:          business.ID(id),
		Name:        "Biz " + id,
		Description: desc,
		Category:    &business.Category{Name: "Restaurant"},
		Location:    &business.Geometry{Type: "Point", Coordinates: []float64{lon, lat}},
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("abcdefghij", 8) // 80
	got := Truncate(long, SummaryLimit)
	if got != long[:60]+"..." {
		t.Fatalf("expected first 60 chars plus ellipsis, got %q", got)
	}
	short := strings.Repeat("x", 40)
	if got := Truncate(short, SummaryLimit); got != short {
		t.Fatalf("expected 40-char description unchanged, got %q", got)
	}
	exact := strings.Repeat("y", 60)
	if got := Truncate(exact, SummaryLimit); got != exact {
		t.Fatalf("expected 60-char description unchanged, got %q", got)
	}
}

func TestRenderRowsAndStates(t *testing.T) {
	s := scene.New(0, 0, 6)
	p := New(s, registry.New(s))
	if p.State() != StateIdle {
		t.Fatalf("expected idle initially, got %s", p.State())
	}
	p.SetLoading()
	if p.State() != StateLoading || p.Message() != MsgLoading {
		t.Fatalf("expected loading state, got %s %q", p.State(), p.Message())
	}
	p.Render([]business.Business{biz("b", strings.Repeat("d", 80), 53.35, -6.26), biz("a", "", 53.36, -6.26)},
		WithOrigin(53.35, -6.26))
	rows := p.Rows()
	if p.State() != StateReady || len(rows) != 2 {
		t.Fatalf("expected 2 ready rows, got %s %d", p.State(), len(rows))
	}
	if rows[0].Rank != 1 || rows[0].ID != "b" || rows[1].Rank != 2 || rows[1].ID != "a" {
		t.Fatalf("unexpected row order %+v", rows)
	}
	if !strings.HasSuffix(rows[0].Summary, "...") || len(rows[0].Summary) != 63 {
		t.Fatalf("expected truncated summary, got %q", rows[0].Summary)
	}
	if rows[0].DistanceM == nil || *rows[0].DistanceM != 0 {
		t.Fatalf("expected zero distance at origin, got %v", rows[0].DistanceM)
	}
	if rows[1].DistanceM == nil || *rows[1].DistanceM < 1000 {
		t.Fatalf("expected ~1.1km for second row, got %v", rows[1].DistanceM)
	}
	if rows[0].Color != "#f5576c" {
		t.Fatalf("expected restaurant color, got %s", rows[0].Color)
	}

	p.Render(nil)
	if p.State() != StateEmpty || p.Message() != MsgEmpty {
		t.Fatalf("expected empty state, got %s %q", p.State(), p.Message())
	}
	p.SetError("")
	if p.State() != StateError || p.Message() == MsgEmpty {
		t.Fatalf("expected error state distinct from empty, got %s %q", p.State(), p.Message())
	}
}

func TestActivateFocusesMarker(t *testing.T) {
	s := scene.New(0, 0, 6)
	reg := registry.New(s)
	full := []business.Business{biz("a", "", 53.35, -6.26), biz("b", "", 53.36, -6.25)}
	reg.ReplaceAll(full, numbering.Assign(full, full))
	p := New(s, reg)
	p.Render(full)

	if !p.Activate("b") {
		t.Fatalf("expected activation to succeed")
	}
	snap := s.Snapshot()
	m, _ := reg.Get("b")
	if snap.OpenPopup == nil || *snap.OpenPopup != m.Layer {
		t.Fatalf("expected popup of b open, got %v", snap.OpenPopup)
	}
	if snap.View.Lat != 53.36 || snap.View.Lon != -6.25 || snap.View.Zoom != 15 {
		t.Fatalf("expected view centered on b at zoom 15, got %+v", snap.View)
	}
}

func TestActivateUnknownIsNoop(t *testing.T) {
	s := scene.New(1, 2, 6)
	p := New(s, registry.New(s))
	before := s.Snapshot()
	if p.Activate("missing") {
		t.Fatalf("expected no-op for unknown id")
	}
	after := s.Snapshot()
	if after.Revision != before.Revision {
		t.Fatalf("expected surface untouched, revision %d -> %d", before.Revision, after.Revision)
	}
}

func TestErrorKeepsPriorRowsHidden(t *testing.T) {
	s := scene.New(0, 0, 6)
	reg := registry.New(s)
	full := []business.Business{biz("a", "", 53.35, -6.26), biz("b", "", 53.36, -6.25)}
	reg.ReplaceAll(full, numbering.Assign(full, full))
	p := New(s, reg)
	p.Render(full)

	p.SetLoading()
	p.SetError(MsgError)
	if p.State() != StateError || len(p.Rows()) != 0 {
		t.Fatalf("expected error state without visible rows, got %s %d", p.State(), len(p.Rows()))
	}
	if !p.Activate("a") {
		t.Fatalf("expected markers still activatable after a failed search")
	}

	p.SetLoading()
	p.Restore()
	rows := p.Rows()
	if p.State() != StateReady || len(rows) != 2 || rows[0].ID != "a" || rows[1].Rank != 2 {
		t.Fatalf("expected prior rows back after restore, got %s %+v", p.State(), rows)
	}
}
