package main

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestThrottledRequestsAreAccessLogged(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mux := http.NewServeMux()
	mux.HandleFunc("/api/view", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := serveHandler(l, mux, true, 4) // 每 IP 容量 1

	var codes []int
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/view", nil)
		r.RemoteAddr = "192.0.2.1:1000"
		h.ServeHTTP(rec, r)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected 200 then 429, got %v", codes)
	}
	out := buf.String()
	if strings.Count(out, "msg=http_access") != 2 {
		t.Fatalf("expected both requests access-logged, got %q", out)
	}
	for _, want := range []string{"status=200", "level=INFO msg=http_access", "status=429"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}
