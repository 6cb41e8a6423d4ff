package api

import (
	"delivery-dispatch-service/internal/api/handlers"
	"net/http"
)

type RouterConfig struct {
	Service string
	Limits  handlers.Limits
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(svc handlers.DeliveryService, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	delivery := &handlers.DeliveryHandler{Service: svc, Limits: cfg.Limits}
	health := handlers.Health(cfg.Service)

	mux.HandleFunc("/health", health)
	mux.HandleFunc("/api/delivery/health", health)
	mux.HandleFunc("/api/delivery/process", delivery.Process)
	mux.HandleFunc("/api/delivery/drivers", delivery.Drivers)
	mux.HandleFunc("/api/delivery/customers", delivery.Customers)
	mux.HandleFunc("/api/delivery/assignments", delivery.Assignments)
	mux.HandleFunc("/api/delivery/reset", delivery.Reset)

	return requestIDMiddleware(loggingMiddleware(mux))
}
