package api

import (
	"delivery-dispatch-service/internal/adapters/repositories"
	"delivery-dispatch-service/internal/api/handlers"
	"delivery-dispatch-service/internal/services"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestRouter() http.Handler {
	svc := services.NewDispatcher(
		repositories.NewMemoryDriverRepository(),
		repositories.NewMemoryAssignmentRepository(),
		nil,
	)
	return NewRouter(svc, RouterConfig{Service: "test", Limits: handlers.Limits{MaxDrivers: 10, MaxOrders: 10}})
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{method: http.MethodGet, path: "/health", want: http.StatusOK},
		{method: http.MethodGet, path: "/api/delivery/health", want: http.StatusOK},
		{method: http.MethodPost, path: "/api/delivery/process", body: `{"number_of_drivers":1,"orders":[]}`, want: http.StatusOK},
		{method: http.MethodGet, path: "/api/delivery/drivers", want: http.StatusOK},
		{method: http.MethodGet, path: "/api/delivery/customers", want: http.StatusOK},
		{method: http.MethodGet, path: "/api/delivery/assignments", want: http.StatusOK},
		{method: http.MethodPost, path: "/api/delivery/reset", want: http.StatusOK},
		{method: http.MethodGet, path: "/api/delivery/reset", want: http.StatusMethodNotAllowed},
		{method: http.MethodGet, path: "/api/delivery/unknown", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRouterRequestID(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q, want abc-123", got)
	}
}
