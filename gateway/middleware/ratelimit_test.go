package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{
		"mint": {RatePerSecond: 1, Burst: 1},
	}, nil)
	handler := limiter.Middleware("mint")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/collections/0x01/mint", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be rate limited, got %d", res.Code)
	}
}

func TestRateLimiterSeparatesClasses(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{
		"mint":  {RatePerSecond: 1, Burst: 1},
		"admin": {RatePerSecond: 1, Burst: 1},
	}, nil)
	mintHandler := limiter.Middleware("mint")(okHandler())
	adminHandler := limiter.Middleware("admin")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/collections/0x01/mint", nil)
	req.Header.Set("X-API-Key", "tenant-A")
	res := httptest.NewRecorder()
	mintHandler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected mint request to succeed, got %d", res.Code)
	}

	adminReq := httptest.NewRequest(http.MethodPost, "/v1/registries", nil)
	adminReq.Header.Set("X-API-Key", "tenant-A")
	adminRes := httptest.NewRecorder()
	adminHandler.ServeHTTP(adminRes, adminReq)
	if adminRes.Code != http.StatusOK {
		t.Fatalf("expected first admin request to succeed, got %d", adminRes.Code)
	}

	adminRes = httptest.NewRecorder()
	adminHandler.ServeHTTP(adminRes, adminReq)
	if adminRes.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second admin request to hit limit, got %d", adminRes.Code)
	}
}

func TestRateLimiterAppliesRouteTokens(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{
		"admin": {
			RatePerSecond: 5,
			Burst:         5,
			DefaultTokens: 1,
			Tokens: map[string]int{
				"POST /v1/factories": 3,
			},
		},
	}, nil)
	handler := limiter.Middleware("admin")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/factories", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected first deploy request to succeed, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second deploy request to exhaust the burst, got %d", res.Code)
	}

	// Other routes cost the default single token.
	statusReq := httptest.NewRequest(http.MethodPost, "/v1/formulas", nil)
	statusRes := httptest.NewRecorder()
	handler.ServeHTTP(statusRes, statusReq)
	if statusRes.Code != http.StatusOK {
		t.Fatalf("expected formula route to succeed with default token cost, got %d", statusRes.Code)
	}
}

func TestRateLimiterKeysByCaller(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{
		"mint": {RatePerSecond: 1, Burst: 1},
	}, nil)
	handler := limiter.Middleware("mint")(okHandler())

	for _, caller := range [][20]byte{{0x01}, {0x02}} {
		req := httptest.NewRequest(http.MethodPost, "/v1/collections/0x01/mint", nil)
		req = req.WithContext(WithCaller(req.Context(), caller))
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Fatalf("expected caller %x to have its own bucket, got %d", caller, res.Code)
		}
	}
}
