package repositories

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
)

const (
	redisDriversKey     = "dispatch:drivers"
	redisAssignmentsKey = "dispatch:assignments"
)

// RedisDriverRepository keeps the pool in a single hash keyed by driver identity.
type RedisDriverRepository struct {
	redis *redis.Client
}

func NewRedisDriverRepository(rdb *redis.Client) *RedisDriverRepository {
	return &RedisDriverRepository{redis: rdb}
}

type redisDriver struct {
	DriverID        string `json:"driver_id"`
	Status          string `json:"status"`
	NextAvailableAt int    `json:"available_at"`
	CurrentOrderID  string `json:"current_order_id,omitempty"`
}

func encodeDrivers(drivers []*domain.Driver) ([]any, error) {
	fields := make([]any, 0, 2*len(drivers))
	for _, d := range drivers {
		if d == nil {
			return nil, errors.New("encode drivers: nil driver")
		}
		b, err := json.Marshal(redisDriver{
			DriverID:        d.DriverID,
			Status:          string(d.Status),
			NextAvailableAt: d.NextAvailableAt,
			CurrentOrderID:  d.CurrentOrderID,
		})
		if err != nil {
			return nil, fmt.Errorf("encode driver_id=%q: %w", d.DriverID, err)
		}
		fields = append(fields, d.DriverID, string(b))
	}
	return fields, nil
}

func (s *RedisDriverRepository) ReplaceAll(ctx context.Context, drivers []*domain.Driver) (err error) {
	defer obs.Time(ctx, "drivers.redis.ReplaceAll")(&err)

	fields, err := encodeDrivers(drivers)
	if err != nil {
		return fmt.Errorf("replace drivers: %w", err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisDriversKey)
		if len(fields) > 0 {
			pipe.HSet(ctx, redisDriversKey, fields...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace drivers: %w", err)
	}
	return nil
}

func (s *RedisDriverRepository) SaveAll(ctx context.Context, drivers []*domain.Driver) (err error) {
	defer obs.Time(ctx, "drivers.redis.SaveAll")(&err)

	if len(drivers) == 0 {
		return nil
	}

	fields, err := encodeDrivers(drivers)
	if err != nil {
		return fmt.Errorf("save drivers: %w", err)
	}

	if err := s.redis.HSet(ctx, redisDriversKey, fields...).Err(); err != nil {
		return fmt.Errorf("save drivers: %w", err)
	}
	return nil
}

func (s *RedisDriverRepository) ListDrivers(ctx context.Context) (_ []*domain.Driver, err error) {
	defer obs.Time(ctx, "drivers.redis.ListDrivers")(&err)

	values, err := s.redis.HGetAll(ctx, redisDriversKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}

	drivers := make([]*domain.Driver, 0, len(values))
	for id, raw := range values {
		var rd redisDriver
		if err := json.Unmarshal([]byte(raw), &rd); err != nil {
			return nil, fmt.Errorf("list drivers: decode driver_id=%q: %w", id, err)
		}
		drivers = append(drivers, &domain.Driver{
			DriverID:        rd.DriverID,
			Status:          domain.DriverStatus(rd.Status),
			NextAvailableAt: rd.NextAvailableAt,
			CurrentOrderID:  rd.CurrentOrderID,
		})
	}

	// Hash iteration order is random.
	slices.SortFunc(drivers, func(a, b *domain.Driver) int { return domain.CompareDriverIDs(a.DriverID, b.DriverID) })
	return drivers, nil
}

func (s *RedisDriverRepository) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, redisDriversKey).Err(); err != nil {
		return fmt.Errorf("clear drivers: %w", err)
	}
	return nil
}

// RedisAssignmentRepository appends JSON records to a list, preserving insertion order.
type RedisAssignmentRepository struct {
	redis *redis.Client
}

func NewRedisAssignmentRepository(rdb *redis.Client) *RedisAssignmentRepository {
	return &RedisAssignmentRepository{redis: rdb}
}

type redisAssignment struct {
	DriverID       string `json:"driver_id"`
	AssignmentTime int    `json:"assignment_time"`
	CompletionTime int    `json:"completion_time"`
}

type redisAssignmentRecord struct {
	RunID      string           `json:"run_id"`
	CustomerID string           `json:"customer_id"`
	OrderTime  int              `json:"order_time"`
	TravelTime int              `json:"travel_time"`
	Result     string           `json:"assignment_result"`
	Assignment *redisAssignment `json:"assignment,omitempty"`
}

func (s *RedisAssignmentRepository) Append(ctx context.Context, records []domain.AssignmentRecord) (err error) {
	defer obs.Time(ctx, "assignments.redis.Append")(&err)

	if len(records) == 0 {
		return nil
	}

	values := make([]any, 0, len(records))
	for _, r := range records {
		o := r.Outcome
		rec := redisAssignmentRecord{
			RunID:      r.RunID,
			CustomerID: o.CustomerID,
			OrderTime:  o.OrderTime,
			TravelTime: o.TravelTime,
			Result:     string(o.Result()),
		}
		if a := o.Assignment; a != nil {
			rec.Assignment = &redisAssignment{
				DriverID:       a.DriverID,
				AssignmentTime: a.AssignmentTime,
				CompletionTime: a.CompletionTime,
			}
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("append assignments customer_id=%q: %w", o.CustomerID, err)
		}
		values = append(values, string(b))
	}

	if err := s.redis.RPush(ctx, redisAssignmentsKey, values...).Err(); err != nil {
		return fmt.Errorf("append assignments: %w", err)
	}
	return nil
}

func (s *RedisAssignmentRepository) ListAssignments(ctx context.Context) (_ []domain.AssignmentRecord, err error) {
	defer obs.Time(ctx, "assignments.redis.ListAssignments")(&err)

	values, err := s.redis.LRange(ctx, redisAssignmentsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	records := make([]domain.AssignmentRecord, 0, len(values))
	for i, raw := range values {
		var rec redisAssignmentRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("list assignments: decode entry %d: %w", i, err)
		}

		out := domain.AssignmentRecord{
			RunID: rec.RunID,
			Outcome: domain.Outcome{
				CustomerID: rec.CustomerID,
				OrderTime:  rec.OrderTime,
				TravelTime: rec.TravelTime,
			},
		}
		switch domain.AssignmentResult(rec.Result) {
		case domain.ResultFulfilled:
			if rec.Assignment == nil {
				return nil, fmt.Errorf("list assignments: entry %d: fulfilled record missing assignment", i)
			}
			out.Outcome.Assignment = &domain.Assignment{
				DriverID:       rec.Assignment.DriverID,
				AssignmentTime: rec.Assignment.AssignmentTime,
				CompletionTime: rec.Assignment.CompletionTime,
			}
		case domain.ResultUnfulfilled:
		default:
			return nil, fmt.Errorf("list assignments: entry %d: unknown result %q", i, rec.Result)
		}
		records = append(records, out)
	}

	return records, nil
}

func (s *RedisAssignmentRepository) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, redisAssignmentsKey).Err(); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	return nil
}
