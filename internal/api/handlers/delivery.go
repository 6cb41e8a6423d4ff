package handlers

import (
	"context"
	"delivery-dispatch-service/internal/api/dto"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/services"
	"fmt"
	"log"
	"net/http"
)

// DeliveryService is the dispatcher surface the HTTP layer depends on.
type DeliveryService interface {
	ProcessBatch(ctx context.Context, req services.BatchRequest) (*services.BatchResult, error)
	ListDrivers(ctx context.Context) ([]*domain.Driver, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	ListAssignments(ctx context.Context) ([]domain.AssignmentRecord, error)
	Reset(ctx context.Context) error
}

type Limits struct {
	MaxDrivers int
	MaxOrders  int
}

type DeliveryHandler struct {
	Service DeliveryService
	Limits  Limits
}

// Process runs one batch: a fresh pool of number_of_drivers drivers matched
// against the orders in request order.
func (h *DeliveryHandler) Process(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.ProcessRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	drivers := *req.NumberOfDrivers
	if h.Limits.MaxDrivers > 0 && drivers > h.Limits.MaxDrivers {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("number_of_drivers must be at most %d", h.Limits.MaxDrivers))
		return
	}
	if h.Limits.MaxOrders > 0 && len(req.Orders) > h.Limits.MaxOrders {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("orders must contain at most %d entries", h.Limits.MaxOrders))
		return
	}

	orders := make([]domain.Order, 0, len(req.Orders))
	for _, o := range req.Orders {
		orders = append(orders, domain.Order{OrderTime: *o.OrderTime, TravelTime: *o.TravelTime})
	}

	result, err := h.Service.ProcessBatch(r.Context(), services.BatchRequest{DriverCount: drivers, Orders: orders})
	if err != nil {
		status := statusFor(err)
		if status == http.StatusBadRequest {
			writeError(w, r, status, err.Error())
			return
		}
		log.Printf("process batch failed: %v", err)
		writeError(w, r, status, "internal server error")
		return
	}

	res := dto.ProcessResponse{
		Status:         "success",
		RunID:          result.RunID,
		TotalCustomers: len(result.Outcomes),
		TotalDrivers:   result.DriverCount,
		Assignments:    make([]dto.AssignmentResponse, 0, len(result.Outcomes)),
	}
	for _, o := range result.Outcomes {
		res.Assignments = append(res.Assignments, assignmentResponse(o))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func assignmentResponse(o domain.Outcome) dto.AssignmentResponse {
	res := dto.AssignmentResponse{
		CustomerID: o.CustomerID,
		Fulfilled:  o.Fulfilled(),
		Message:    o.Message(),
	}
	if a := o.Assignment; a != nil {
		assignedAt, completeAt := a.AssignmentTime, a.CompletionTime
		res.AssignedDriver = a.DriverID
		res.AssignmentTime = &assignedAt
		res.CompletionTime = &completeAt
	}
	return res
}

func (h *DeliveryHandler) Drivers(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	drivers, err := h.Service.ListDrivers(r.Context())
	if err != nil {
		log.Printf("list drivers failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListDriversResponse{Drivers: make([]dto.DriverResponse, 0, len(drivers))}
	for _, d := range drivers {
		res.Drivers = append(res.Drivers, dto.DriverResponse{
			DriverID:       d.DriverID,
			Status:         string(d.Status),
			AvailableAt:    d.NextAvailableAt,
			CurrentOrderID: d.CurrentOrderID,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *DeliveryHandler) Customers(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	customers, err := h.Service.ListCustomers(r.Context())
	if err != nil {
		log.Printf("list customers failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListCustomersResponse{Customers: make([]dto.CustomerResponse, 0, len(customers))}
	for _, c := range customers {
		res.Customers = append(res.Customers, dto.CustomerResponse{
			CustomerID:     c.CustomerID,
			OrderTime:      c.OrderTime,
			TravelTime:     c.TravelTime,
			AssignedDriver: c.AssignedDriver,
			Status:         string(c.Status),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *DeliveryHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	records, err := h.Service.ListAssignments(r.Context())
	if err != nil {
		log.Printf("list assignments failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListAssignmentsResponse{Assignments: make([]dto.StoredAssignmentResponse, 0, len(records))}
	for _, rec := range records {
		res.Assignments = append(res.Assignments, dto.StoredAssignmentResponse{
			RunID:              rec.RunID,
			OrderTime:          rec.Outcome.OrderTime,
			TravelTime:         rec.Outcome.TravelTime,
			Result:             string(rec.Outcome.Result()),
			AssignmentResponse: assignmentResponse(rec.Outcome),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *DeliveryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	if err := h.Service.Reset(r.Context()); err != nil {
		log.Printf("reset failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "reset"})
}
