package dto

import (
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, body string) *ProcessRequest {
	t.Helper()
	var req ProcessRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &req
}

func TestProcessRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"number_of_drivers":2,"orders":[{"order_time":1,"travel_time":10}]}`},
		{name: "valid with customer count", body: `{"number_of_customers":1,"number_of_drivers":2,"orders":[{"order_time":1,"travel_time":10}]}`},
		{name: "empty batch", body: `{"number_of_drivers":1,"orders":[]}`},
		{name: "missing drivers", body: `{"orders":[]}`, wantErr: "number_of_drivers is required"},
		{name: "missing orders", body: `{"number_of_drivers":1}`, wantErr: "orders is required"},
		{name: "missing travel time", body: `{"number_of_drivers":1,"orders":[{"order_time":1}]}`, wantErr: "orders[0].travel_time is required"},
		{name: "customer count mismatch", body: `{"number_of_customers":3,"number_of_drivers":1,"orders":[]}`, wantErr: "does not match"},
		{name: "negative customer count", body: `{"number_of_customers":-1,"number_of_drivers":1,"orders":[]}`, wantErr: "number_of_customers must be at least 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decode(t, tt.body).Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
