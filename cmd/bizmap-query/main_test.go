package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"bizmap/internal/business"
	"bizmap/internal/config"
	"bizmap/internal/engine"
)

type stubQuerier struct {
	inRadius, nearest, named []business.Business
	calls                    int
}

func (s *stubQuerier) All(context.Context) ([]business.Business, error) {
	s.calls++
	return s.inRadius, nil
}
func (s *stubQuerier) ByProximity(context.Context, float64, float64, float64) ([]business.Business, error) {
	s.calls++
	return s.inRadius, nil
}
func (s *stubQuerier) ByNearest(context.Context, float64, float64, int) ([]business.Business, error) {
	s.calls++
	return s.nearest, nil
}
func (s *stubQuerier) ByContainment(context.Context, string) ([]business.Business, error) {
	s.calls++
	return s.named, nil
}
func (s *stubQuerier) ByName(context.Context, string) ([]business.Business, error) {
	s.calls++
	return s.named, nil
}

func b(id, name string, lat, lon float64) business.Business {
	return business.Business{
		ID:       business.ID(id),
		Name:     name,
		Category: &business.Category{Name: "Retail"},
		Location: &business.Geometry{Type: "Point", Coordinates: []float64{lon, lat}},
	}
}

func TestRunAreaPrintsRanksConsistently(t *testing.T) {
	q := &stubQuerier{
		inRadius: []business.Business{b("1", "Alpha", 53.35, -6.26), b("2", "Beta", 53.36, -6.26), b("3", "Gamma", 53.40, -6.26)},
		nearest:  []business.Business{b("2", "Beta", 53.36, -6.26), b("1", "Alpha", 53.35, -6.26)},
	}
	var out bytes.Buffer
	cfg := config.Config{NearestLimit: 10, DefaultRadius: 5000}
	if err := run(context.Background(), []string{"area", "53.35", "-6.26"}, &out, q, cfg); err != nil {
		t.Fatalf("run: %v", err)
	}
	s := out.String()
	for _, want := range []string{" 1. Beta [Retail]", " 2. Alpha [Retail] 0 m", "# 2 Alpha", "# 1 Beta", "  - Gamma", "(zoom 13)"} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected %q in output:\n%s", want, s)
		}
	}
}

func TestRunBlankNameIssuesNoQuery(t *testing.T) {
	q := &stubQuerier{}
	err := run(context.Background(), []string{"name", "  "}, &bytes.Buffer{}, q, config.Config{})
	if !errors.Is(err, engine.ErrEmptyInput) || q.calls != 0 {
		t.Fatalf("expected ErrEmptyInput without queries, got %v calls=%d", err, q.calls)
	}
}

func TestRunNameNoMatches(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"name", "zzz"}, &out, &stubQuerier{}, config.Config{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "No businesses found") {
		t.Fatalf("expected empty message, got %q", out.String())
	}
}

func TestRunUsage(t *testing.T) {
	if err := run(context.Background(), nil, &bytes.Buffer{}, &stubQuerier{}, config.Config{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run(context.Background(), []string{"area", "x"}, &bytes.Buffer{}, &stubQuerier{}, config.Config{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}
