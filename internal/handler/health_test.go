package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zuery/zuery/internal/handler"
)

type checkFunc func(ctx context.Context) error

func (f checkFunc) Check(ctx context.Context) error { return f(ctx) }

func TestHealthHealthy(t *testing.T) {
	h := handler.NewHealthHandler(map[string]handler.HealthChecker{
		"interpreter": checkFunc(func(context.Context) error { return nil }),
	})
	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"1.0.0","checks":{"server":"ok","interpreter":"ok"}}`, rr.Body.String())
}

func TestHealthDegraded(t *testing.T) {
	h := handler.NewHealthHandler(map[string]handler.HealthChecker{
		"interpreter": checkFunc(func(context.Context) error { return errors.New("zuery not found") }),
	})
	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), `"interpreter": "unavailable: zuery not found"`)
}

func TestNotFound(t *testing.T) {
	rr := httptest.NewRecorder()
	handler.NotFound(rr, httptest.NewRequest(http.MethodPost, "/other", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "{\"error\":\"Not found\"}\n", rr.Body.String())
}
