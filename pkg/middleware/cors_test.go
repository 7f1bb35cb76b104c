package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsHandler(cfg CORSConfig) http.Handler {
	return CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func corsRequest(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/api/products/all", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCORS_Wildcard(t *testing.T) {
	rr := httptest.NewRecorder()
	corsHandler(DefaultCORSConfig()).ServeHTTP(rr, corsRequest(http.MethodGet, "https://shop.example.com"))

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCORS_AllowedOrigin(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"https://admin.example.com", "https://shop.example.com"}}

	rr := httptest.NewRecorder()
	corsHandler(cfg).ServeHTTP(rr, corsRequest(http.MethodGet, "https://shop.example.com"))

	assert.Equal(t, "https://shop.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rr.Header().Get("Vary"))
}

func TestCORS_RejectedOrigin(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"https://admin.example.com"}}

	rr := httptest.NewRecorder()
	corsHandler(cfg).ServeHTTP(rr, corsRequest(http.MethodGet, "https://evil.example.com"))

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCORS_PreflightReturns204(t *testing.T) {
	called := false
	h := CORS(DefaultCORSConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, corsRequest(http.MethodOptions, "https://admin.example.com"))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.False(t, called)
}

func TestCORS_DefaultsFilled(t *testing.T) {
	rr := httptest.NewRecorder()
	corsHandler(CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}).
		ServeHTTP(rr, corsRequest(http.MethodGet, ""))

	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "X-Correlation-ID")
	assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}
