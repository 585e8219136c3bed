package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	t.Parallel()
	h := CORS(CORSOptions{AllowedOrigins: []string{"https://planet.example"}})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
	)
	cases := []struct {
		name    string
		method  string
		origin  string
		allowed string
	}{
		{"preflight from the front end", http.MethodOptions, "https://planet.example", "https://planet.example"},
		{"unknown origin", http.MethodGet, "https://evil.example", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tc.method, "/api/v1/planets/me/title", nil)
			req.Header.Set("Origin", tc.origin)
			if tc.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPut)
				req.Header.Set("Access-Control-Request-Headers", "Authorization")
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tc.allowed {
				t.Fatalf("allow origin = %q want %q", got, tc.allowed)
			}
		})
	}
}

func TestHeartbeat(t *testing.T) {
	t.Parallel()
	h := Heartbeat("/health")(http.NotFoundHandler())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("heartbeat status = %d", rr.Code)
	}
}
