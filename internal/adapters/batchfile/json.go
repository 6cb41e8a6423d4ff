package batchfile

import (
	"bytes"
	"delivery-dispatch-service/internal/domain"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// OrderSeed is one order as it appears in a batch file.
type OrderSeed struct {
	OrderTime  *int `json:"order_time"`
	TravelTime *int `json:"travel_time"`
}

type batchDocument struct {
	Drivers int         `json:"number_of_drivers"`
	Orders  []OrderSeed `json:"orders"`
}

// Batch is the decoded contents of a batch file. Drivers is zero when the
// file only lists orders.
type Batch struct {
	Drivers int
	Orders  []domain.Order
}

// Load a batch from a JSON file. The file holds either a bare array of
// orders or an object with "number_of_drivers" and "orders".
func LoadFile(path string) (Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return Batch{}, fmt.Errorf("load batch: open %q: %w", path, err)
	}
	defer f.Close()

	b, err := Decode(f)
	if err != nil {
		return Batch{}, fmt.Errorf("load batch %q: %w", path, err)
	}
	return b, nil
}

func Decode(r io.Reader) (Batch, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Batch{}, fmt.Errorf("read: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Batch{}, fmt.Errorf("parse json: empty input")
	}

	var doc batchDocument
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var target any = &doc
	if raw[0] == '[' {
		target = &doc.Orders
	}
	if err := dec.Decode(target); err != nil {
		return Batch{}, fmt.Errorf("parse json: %w", err)
	}
	if dec.More() {
		return Batch{}, fmt.Errorf("parse json: input must contain only one JSON value")
	}

	orders := make([]domain.Order, 0, len(doc.Orders))
	for i, item := range doc.Orders {
		if item.OrderTime == nil || item.TravelTime == nil {
			return Batch{}, fmt.Errorf("order at index %d: order_time and travel_time are required", i+1)
		}
		orders = append(orders, domain.Order{OrderTime: *item.OrderTime, TravelTime: *item.TravelTime})
	}

	return Batch{Drivers: doc.Drivers, Orders: orders}, nil
}
