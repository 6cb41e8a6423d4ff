package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names in validation messages.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type OrderRequest struct {
	OrderTime  *int `json:"order_time" validate:"required"`
	TravelTime *int `json:"travel_time" validate:"required"`
}

type ProcessRequest struct {
	NumberOfCustomers *int           `json:"number_of_customers" validate:"omitempty,gte=0"`
	NumberOfDrivers   *int           `json:"number_of_drivers" validate:"required"`
	Orders            []OrderRequest `json:"orders" validate:"required,dive"`
}

// Validate checks presence and shape. Value ranges of times and the driver
// count are enforced by the domain.
func (r *ProcessRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return err
		}
		return errors.New(describe(verrs[0]))
	}

	if r.NumberOfCustomers != nil && *r.NumberOfCustomers != len(r.Orders) {
		return fmt.Errorf("number_of_customers (%d) does not match the number of orders (%d)", *r.NumberOfCustomers, len(r.Orders))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	// Namespace is "ProcessRequest.orders[0].order_time"; drop the type name.
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gte":
		return field + " must be at least " + fe.Param()
	}
	return field + " is invalid"
}

type AssignmentResponse struct {
	CustomerID     string `json:"customer_id"`
	AssignedDriver string `json:"assigned_driver,omitempty"`
	Fulfilled      bool   `json:"fulfilled"`
	AssignmentTime *int   `json:"assignment_time,omitempty"`
	CompletionTime *int   `json:"completion_time,omitempty"`
	Message        string `json:"message"`
}

type ProcessResponse struct {
	Status         string               `json:"status"`
	RunID          string               `json:"run_id"`
	TotalCustomers int                  `json:"total_customers"`
	TotalDrivers   int                  `json:"total_drivers"`
	Assignments    []AssignmentResponse `json:"assignments"`
}

type DriverResponse struct {
	DriverID       string `json:"driver_id"`
	Status         string `json:"status"`
	AvailableAt    int    `json:"available_at"`
	CurrentOrderID string `json:"current_order_id,omitempty"`
}

type ListDriversResponse struct {
	Drivers []DriverResponse `json:"drivers"`
}

type CustomerResponse struct {
	CustomerID     string `json:"customer_id"`
	OrderTime      int    `json:"order_time"`
	TravelTime     int    `json:"travel_time"`
	AssignedDriver string `json:"assigned_driver,omitempty"`
	Status         string `json:"status"`
}

type ListCustomersResponse struct {
	Customers []CustomerResponse `json:"customers"`
}

type StoredAssignmentResponse struct {
	RunID      string `json:"run_id"`
	OrderTime  int    `json:"order_time"`
	TravelTime int    `json:"travel_time"`
	Result     string `json:"assignment_result"`
	AssignmentResponse
}

type ListAssignmentsResponse struct {
	Assignments []StoredAssignmentResponse `json:"assignments"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
