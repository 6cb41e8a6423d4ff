package domain

type AssignmentResult string

const (
	ResultFulfilled   AssignmentResult = "FULFILLED"
	ResultUnfulfilled AssignmentResult = "UNFULFILLED"
)

// Assignment holds the matched driver and timeline for a fulfilled order.
type Assignment struct {
	DriverID       string
	AssignmentTime int
	CompletionTime int
}

// Outcome is the per-order result of a batch run.
// A nil Assignment means the order was not fulfilled; timing fields
// are absent in that case rather than zero.
type Outcome struct {
	CustomerID string
	OrderTime  int
	TravelTime int
	Assignment *Assignment
}

func FulfilledOutcome(customerID string, o Order, driverID string) Outcome {
	return Outcome{
		CustomerID: customerID,
		OrderTime:  o.OrderTime,
		TravelTime: o.TravelTime,
		Assignment: &Assignment{
			DriverID:       driverID,
			AssignmentTime: o.OrderTime,
			CompletionTime: o.CompletionTime(),
		},
	}
}

func UnfulfilledOutcome(customerID string, o Order) Outcome {
	return Outcome{
		CustomerID: customerID,
		OrderTime:  o.OrderTime,
		TravelTime: o.TravelTime,
	}
}

func (o Outcome) Fulfilled() bool { return o.Assignment != nil }

func (o Outcome) Result() AssignmentResult {
	if o.Fulfilled() {
		return ResultFulfilled
	}
	return ResultUnfulfilled
}

// AssignmentRecord is a persisted outcome tagged with the batch run that produced it.
type AssignmentRecord struct {
	RunID   string
	Outcome Outcome
}

type CustomerStatus string

const (
	CustomerAssigned CustomerStatus = "ASSIGNED"
	CustomerRejected CustomerStatus = "REJECTED"
)

// Customer is the order-centric view of an outcome.
type Customer struct {
	CustomerID     string
	OrderTime      int
	TravelTime     int
	AssignedDriver string
	Status         CustomerStatus
}

func CustomerFromOutcome(o Outcome) Customer {
	c := Customer{
		CustomerID: o.CustomerID,
		OrderTime:  o.OrderTime,
		TravelTime: o.TravelTime,
		Status:     CustomerRejected,
	}
	if o.Fulfilled() {
		c.AssignedDriver = o.Assignment.DriverID
		c.Status = CustomerAssigned
	}
	return c
}

// Message renders the outcome as a one-line summary, e.g. "C1 - D1".
func (o Outcome) Message() string {
	if o.Fulfilled() {
		return o.CustomerID + " - " + o.Assignment.DriverID
	}
	return o.CustomerID + " - No Food :-("
}
