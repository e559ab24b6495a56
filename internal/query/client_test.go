package query

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const bistro = `{"id":1,"name":"Test Bistro","category":{"name":"Restaurant"},"location":{"type":"Point","coordinates":[-6.26,53.35]}}`
const shop = `{"id":2,"name":"Corner Shop","category":{"name":"Retail"},"location":{"type":"Point","coordinates":[-6.25,53.34]}}`

func newBackend(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client())
}

func TestByProximityFlatList(t *testing.T) {
	var gotPath, gotQuery string
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte("[" + bistro + "," + shop + "]"))
	})
	out, err := c.ByProximity(context.Background(), 53.35, -6.26, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/businesses/nearby/" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotQuery != "lat=53.35&lon=-6.26&radius=5000" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if len(out) != 2 || out[0].ID != "1" || out[1].ID != "2" {
		t.Fatalf("expected ids [1 2] in order, got %+v", out)
	}
}

func TestByNamePaginatedEnvelope(t *testing.T) {
	var gotSearch string
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotSearch = r.URL.Query().Get("search")
		_, _ = w.Write([]byte(`{"count":1,"next":null,"previous":null,"results":[` + shop + `]}`))
	})
	out, err := c.ByName(context.Background(), "corner & co")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotSearch != "corner & co" {
		t.Fatalf("search text not round-tripped, got %q", gotSearch)
	}
	if len(out) != 1 || out[0].Name != "Corner Shop" {
		t.Fatalf("expected one Corner Shop, got %+v", out)
	}
}

func TestEnvelopeWithoutResultsFails(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"detail":"nope"}`))
	})
	_, err := c.All(context.Background())
	var qf *QueryFailed
	if !errors.As(err, &qf) || qf.Mode != ModeAll {
		t.Fatalf("expected QueryFailed{all}, got %v", err)
	}
}

func TestNonSuccessStatusIsQueryFailed(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Service area not found."}`))
	})
	out, err := c.ByContainment(context.Background(), "Nowhere")
	if out != nil {
		t.Fatalf("expected no partial results, got %+v", out)
	}
	var qf *QueryFailed
	if !errors.As(err, &qf) {
		t.Fatalf("expected QueryFailed, got %v", err)
	}
	if qf.Mode != ModeContainment || qf.Status != http.StatusNotFound {
		t.Fatalf("expected containment/404, got %s/%d", qf.Mode, qf.Status)
	}
	if qf.Cause.Error() != "Service area not found." {
		t.Fatalf("expected backend detail as cause, got %q", qf.Cause.Error())
	}
}

func TestTransportErrorIsQueryFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	c := NewClient(url, nil)
	_, err := c.ByNearest(context.Background(), 1, 2, 3)
	var qf *QueryFailed
	if !errors.As(err, &qf) || qf.Mode != ModeNearest || qf.Status != 0 {
		t.Fatalf("expected QueryFailed{nearest, 0}, got %v", err)
	}
}

func TestMalformedRecordsAreSkipped(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[` + bistro + `,{"id":9,"name":"No Geometry","category":{"name":"Retail"}},` + shop + `]`))
	})
	out, err := c.ByNearest(context.Background(), 53.35, -6.26, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].ID != "1" || out[1].ID != "2" {
		t.Fatalf("expected malformed record skipped and order kept, got %+v", out)
	}
}
