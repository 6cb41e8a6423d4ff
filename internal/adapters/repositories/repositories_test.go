package repositories

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/ports"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

type backend struct {
	name        string
	drivers     ports.DriverRepository
	assignments ports.AssignmentRepository
}

func openSqlite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Every connection to :memory: is a fresh database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := InitSqliteSchema(context.Background(), db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func newRedisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func backends(t *testing.T) []backend {
	t.Helper()

	db := openSqlite(t)
	_, rdb := newRedisClient(t)

	return []backend{
		{name: "memory", drivers: NewMemoryDriverRepository(), assignments: NewMemoryAssignmentRepository()},
		{name: "sqlite", drivers: NewSqliteDriverRepository(db), assignments: NewSqliteAssignmentRepository(db)},
		{name: "redis", drivers: NewRedisDriverRepository(rdb), assignments: NewRedisAssignmentRepository(rdb)},
	}
}

func sampleRecords(runID string) []domain.AssignmentRecord {
	return []domain.AssignmentRecord{
		{RunID: runID, Outcome: domain.FulfilledOutcome("C1", domain.Order{OrderTime: 1, TravelTime: 10}, "D1")},
		{RunID: runID, Outcome: domain.UnfulfilledOutcome("C2", domain.Order{OrderTime: 6, TravelTime: 5})},
	}
}

func TestDriverRepositoryReplaceAndList(t *testing.T) {
	ctx := context.Background()

	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			first, _ := domain.NewDrivers(3)
			if err := b.drivers.ReplaceAll(ctx, first); err != nil {
				t.Fatalf("replace: %v", err)
			}

			second, _ := domain.NewDrivers(11)
			if err := b.drivers.ReplaceAll(ctx, second); err != nil {
				t.Fatalf("replace: %v", err)
			}

			got, err := b.drivers.ListDrivers(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}

			want := []string{"D1", "D10", "D11", "D2", "D3", "D4", "D5", "D6", "D7", "D8", "D9"}
			if len(got) != len(want) {
				t.Fatalf("got %d drivers, want %d", len(got), len(want))
			}
			for i, d := range got {
				if d.DriverID != want[i] {
					t.Fatalf("driver %d = %q, want %q", i, d.DriverID, want[i])
				}
				if d.NextAvailableAt != 0 || d.Status != domain.DriverAvailable || d.CurrentOrderID != "" {
					t.Fatalf("driver %s not fresh: %+v", d.DriverID, d)
				}
			}
		})
	}
}

func TestDriverRepositorySaveAllUpdatesState(t *testing.T) {
	ctx := context.Background()

	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			drivers, _ := domain.NewDrivers(2)
			if err := b.drivers.ReplaceAll(ctx, drivers); err != nil {
				t.Fatalf("replace: %v", err)
			}

			drivers[1].Assign("C1", 6, 5)
			if err := b.drivers.SaveAll(ctx, drivers); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, err := b.drivers.ListDrivers(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			d2 := got[1]
			if d2.DriverID != "D2" || d2.NextAvailableAt != 11 || d2.Status != domain.DriverBusy || d2.CurrentOrderID != "C1" {
				t.Fatalf("unexpected D2: %+v", d2)
			}

			// The repository must hand back copies.
			got[0].NextAvailableAt = 99
			again, _ := b.drivers.ListDrivers(ctx)
			if again[0].NextAvailableAt != 0 {
				t.Fatalf("stored driver mutated through listed value")
			}

			if err := b.drivers.Clear(ctx); err != nil {
				t.Fatalf("clear: %v", err)
			}
			empty, _ := b.drivers.ListDrivers(ctx)
			if len(empty) != 0 {
				t.Fatalf("expected no drivers after clear, got %d", len(empty))
			}
		})
	}
}

func TestAssignmentRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			first := sampleRecords("run-1")
			second := sampleRecords("run-2")[:1]

			if err := b.assignments.Append(ctx, first); err != nil {
				t.Fatalf("append: %v", err)
			}
			if err := b.assignments.Append(ctx, second); err != nil {
				t.Fatalf("append: %v", err)
			}

			got, err := b.assignments.ListAssignments(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}

			want := append(append([]domain.AssignmentRecord{}, first...), second...)
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("got %+v\nwant %+v", got, want)
			}
			if got[1].Outcome.Assignment != nil {
				t.Fatalf("unfulfilled record came back with an assignment: %+v", got[1].Outcome.Assignment)
			}

			if err := b.assignments.Clear(ctx); err != nil {
				t.Fatalf("clear: %v", err)
			}
			empty, _ := b.assignments.ListAssignments(ctx)
			if len(empty) != 0 {
				t.Fatalf("expected no assignments after clear, got %d", len(empty))
			}
		})
	}
}

func TestSqliteUnfulfilledRowStoresNulls(t *testing.T) {
	ctx := context.Background()
	db := openSqlite(t)
	repo := NewSqliteAssignmentRepository(db)

	if err := repo.Append(ctx, sampleRecords("run-1")); err != nil {
		t.Fatalf("append: %v", err)
	}

	var (
		driverID   sql.NullString
		assignedAt sql.NullInt64
		completeAt sql.NullInt64
	)
	err := db.QueryRowContext(ctx, `
	SELECT driver_id, assignment_time, completion_time
	FROM delivery_assignments
	WHERE customer_id = 'C2';
	`).Scan(&driverID, &assignedAt, &completeAt)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if driverID.Valid || assignedAt.Valid || completeAt.Valid {
		t.Fatalf("expected NULL columns, got %v %v %v", driverID, assignedAt, completeAt)
	}
}

func TestSqliteSchemaRejectsInconsistentRows(t *testing.T) {
	ctx := context.Background()
	db := openSqlite(t)

	tests := []struct {
		name string
		q    string
	}{
		{
			name: "fulfilled without driver",
			q: `INSERT INTO delivery_assignments (run_id, customer_id, order_time, travel_time, assignment_result)
				VALUES ('r', 'C1', 1, 1, 'FULFILLED');`,
		},
		{
			name: "unfulfilled with timing",
			q: `INSERT INTO delivery_assignments (run_id, customer_id, order_time, travel_time, assignment_result, assignment_time)
				VALUES ('r', 'C1', 1, 1, 'UNFULFILLED', 1);`,
		},
		{
			name: "unknown result",
			q: `INSERT INTO delivery_assignments (run_id, customer_id, order_time, travel_time, assignment_result)
				VALUES ('r', 'C1', 1, 1, 'MAYBE');`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.ExecContext(ctx, tt.q); err == nil {
				t.Fatal("expected constraint violation")
			}
		})
	}
}

func TestAssignmentRowRejectsBrokenFulfilledRow(t *testing.T) {
	row := assignmentRow{RunID: "r", CustomerID: "C1", OrderTime: 1, TravelTime: 2, Result: "FULFILLED"}
	if _, err := row.record(); err == nil {
		t.Fatal("expected error for fulfilled row without driver")
	}
}

func TestRedisListRejectsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedisClient(t)

	if _, err := mr.RPush(redisAssignmentsKey, `{"run_id":"r","customer_id":"C1","assignment_result":"FULFILLED"}`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	repo := NewRedisAssignmentRepository(rdb)
	if _, err := repo.ListAssignments(ctx); err == nil {
		t.Fatal("expected error for fulfilled record without assignment")
	}
}

func TestPostgresSchemaUsesBigintTimes(t *testing.T) {
	for i, stmt := range postgresSchema {
		if strings.Contains(stmt, " INTEGER") {
			t.Fatalf("statement #%d declares a 32-bit INTEGER column:\n%s", i+1, stmt)
		}
	}
}

func TestAssignmentRepositoryStoresLargeTimes(t *testing.T) {
	ctx := context.Background()
	order := domain.Order{OrderTime: math.MaxInt - 10, TravelTime: 10}
	records := []domain.AssignmentRecord{{RunID: "run-1", Outcome: domain.FulfilledOutcome("C1", order, "D1")}}

	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			if err := b.assignments.Append(ctx, records); err != nil {
				t.Fatalf("append: %v", err)
			}
			got, err := b.assignments.ListAssignments(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if !reflect.DeepEqual(got, records) {
				t.Fatalf("got %+v, want %+v", got, records)
			}
		})
	}
}
