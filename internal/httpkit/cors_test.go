package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := CORS(CORSOptions{AllowedOrigins: []string{" http://localhost:5173 ", ""}})(next)

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantAllowed bool
	}{
		{"allowed origin", http.MethodGet, "http://localhost:5173", http.StatusTeapot, true},
		{"other origin", http.MethodGet, "http://evil.test", http.StatusTeapot, false},
		{"preflight", http.MethodOptions, "http://localhost:5173", http.StatusNoContent, true},
		{"no origin", http.MethodPost, "", http.StatusTeapot, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/renders", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			got := rec.Header().Get("Access-Control-Allow-Origin") != ""
			if got != tt.wantAllowed {
				t.Errorf("expected allowed=%v, got %v", tt.wantAllowed, got)
			}
			if tt.wantAllowed && rec.Header().Get("Access-Control-Max-Age") != "600" {
				t.Errorf("expected max age 600, got %q", rec.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}

func TestCORSWildcard(t *testing.T) {
	h := CORS(CORSOptions{AllowedOrigins: []string{"*"}})(http.NotFoundHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://anywhere.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "https://anywhere.test" {
		t.Errorf("wildcard should echo the origin, got %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}
