package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bulkwala/internal/degrade"

	"github.com/stretchr/testify/assert"
)

func TestHealthReportsCapabilities(t *testing.T) {
	app := newTestApplication(t, degrade.Capabilities{degrade.Database: true, degrade.Email: true}, nil)

	rr, env := doJSON(t, app, http.MethodGet, "/api/v1/health", "", "")

	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","env":"test","version":"test","capabilities":{"database":true,"email":true,"sms":false,"images":false,"payments":false}}`, string(env.Data))
}

func TestDebugVarsRequireBasicAuth(t *testing.T) {
	app := newTestApplication(t, nil, nil)
	app.config.Auth.BasicUser = "ops"
	app.config.Auth.BasicPass = "secret"

	req := httptest.NewRequest(http.MethodGet, "/api/v1/debug/vars", nil)
	rr := httptest.NewRecorder()
	app.mount().ServeHTTP(rr, req)
	checkResponseCode(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/debug/vars", nil)
	req.SetBasicAuth("ops", "secret")
	rr = httptest.NewRecorder()
	app.mount().ServeHTTP(rr, req)
	checkResponseCode(t, http.StatusOK, rr.Code)
}

func TestRateLimiter(t *testing.T) {
	app := newTestApplication(t, nil, nil)
	app.config.RateLimiter.Enabled = true
	app.rateLimiter = fixedLimiter{allow: false}

	rr, env := doJSON(t, app, http.MethodGet, "/api/v1/health", "", "")

	checkResponseCode(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1s", rr.Header().Get("Retry-After"))
	assert.False(t, env.Success)
}

func TestErrorResponseMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errInvalidCredentials, http.StatusUnauthorized},
		{errEmailNotVerified, http.StatusForbidden},
		{errImageRequired, http.StatusBadRequest},
		{errParentNotFound, http.StatusNotFound},
		{degrade.ErrNotConfigured, http.StatusServiceUnavailable},
		{errDown, http.StatusInternalServerError},
	}

	app := newTestApplication(t, nil, nil)
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		app.errorResponse(rr, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		checkResponseCode(t, tt.want, rr.Code)
	}
}
