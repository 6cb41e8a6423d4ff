package handlers

import (
	"delivery-dispatch-service/internal/api/dto"
	"net/http"
)

// Health provides a minimal liveness check endpoint.
func Health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}

		writeJSON(w, r, http.StatusOK, dto.HealthResponse{Status: "UP", Service: service})
	}
}
