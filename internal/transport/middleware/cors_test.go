package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heartmarshall/bazaar-backend/internal/config"
)

func corsConfig(origins string, credentials bool) config.CORSConfig {
	return config.CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   "GET,POST,PUT,OPTIONS",
		AllowedHeaders:   "Authorization,Content-Type,Accept-Language",
		AllowCredentials: credentials,
		MaxAge:           86400,
	}
}

func TestCORS_Preflight(t *testing.T) {
	wrapped := CORS(corsConfig("https://bazaar.example.org", true))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called for preflight")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/donations/photos", nil)
	req.Header.Set("Origin", "https://bazaar.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	want := map[string]string{
		"Access-Control-Allow-Origin":      "https://bazaar.example.org",
		"Access-Control-Allow-Methods":     "GET,POST,PUT,OPTIONS",
		"Access-Control-Allow-Headers":     "Authorization,Content-Type,Accept-Language",
		"Access-Control-Allow-Credentials": "true",
		"Access-Control-Max-Age":           "86400",
		"Vary":                             "Origin",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestCORS_PreflightFromDisallowedOrigin(t *testing.T) {
	wrapped := CORS(corsConfig("https://bazaar.example.org", true))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called for preflight")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/donations", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	for _, k := range []string{"Access-Control-Allow-Origin", "Access-Control-Allow-Methods"} {
		if got := rec.Header().Get(k); got != "" {
			t.Errorf("%s should be empty, got %q", k, got)
		}
	}
}

func TestCORS_SimpleRequests(t *testing.T) {
	tests := []struct {
		name            string
		cfg             config.CORSConfig
		method          string
		origin          string
		wantOrigin      string
		wantCredentials string
	}{
		{"listed origin", corsConfig("https://bazaar.example.org, https://admin.example.org", true), http.MethodGet, "https://admin.example.org", "https://admin.example.org", "true"},
		{"unlisted origin", corsConfig("https://bazaar.example.org", true), http.MethodGet, "https://evil.example.com", "", ""},
		{"wildcard without credentials", corsConfig("*", false), http.MethodGet, "https://any.example.net", "https://any.example.net", ""},
		{"no origin header", corsConfig("*", true), http.MethodGet, "", "", ""},
		{"plain OPTIONS reaches handler", corsConfig("*", false), http.MethodOptions, "https://any.example.net", "https://any.example.net", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			wrapped := CORS(tt.cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/bazaars", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)

			if !called {
				t.Error("expected handler to be called")
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCredentials {
				t.Errorf("Allow-Credentials = %q, want %q", got, tt.wantCredentials)
			}
			if tt.wantOrigin != "" {
				if got := rec.Header().Get("Access-Control-Expose-Headers"); got != exposedHeaders {
					t.Errorf("Expose-Headers = %q, want %q", got, exposedHeaders)
				}
			}
		})
	}
}
