package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeBatch(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_BACKEND", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunPrintsOneLinePerCustomer(t *testing.T) {
	path := writeBatch(t, `[{"order_time":1,"travel_time":10},{"order_time":6,"travel_time":5}]`)

	out, err := execute(t, "run", "--drivers", "1", "--orders", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "C1 - D1\nC2 - No Food :-(\n"; out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestRunUsesDriverCountFromFile(t *testing.T) {
	path := writeBatch(t, `{"number_of_drivers":2,"orders":[{"order_time":1,"travel_time":10},{"order_time":6,"travel_time":5}]}`)

	out, err := execute(t, "run", "--orders", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "C1 - D1\nC2 - D2\n"; out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestRunErrors(t *testing.T) {
	noDrivers := writeBatch(t, `[{"order_time":1,"travel_time":1}]`)
	badOrder := writeBatch(t, `[{"order_time":0,"travel_time":1}]`)

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing orders flag", args: []string{"run", "--drivers", "1"}},
		{name: "no driver count", args: []string{"run", "--orders", noDrivers}},
		{name: "invalid order", args: []string{"run", "--drivers", "1", "--orders", badOrder}},
		{name: "unknown store", args: []string{"run", "--drivers", "1", "--orders", noDrivers, "--store", "mongo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil || out != "dev\n" {
		t.Fatalf("version = %q, err %v", out, err)
	}
}
