package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Nahue18R/sistema-vacaciones/internal/employee"
	employeeerrors "github.com/Nahue18R/sistema-vacaciones/internal/employee/errors"
	"github.com/Nahue18R/sistema-vacaciones/internal/shared/apperror"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeEmployeeRepository struct {
	loadAllFn          func(ctx context.Context) ([]employee.Employee, error)
	findByEmployeeIDFn func(ctx context.Context, employeeID string) (*employee.Employee, error)
}

func (f *fakeEmployeeRepository) WithTx(tx *sql.Tx) employee.Repository { return f }

func (f *fakeEmployeeRepository) LoadAll(ctx context.Context) ([]employee.Employee, error) {
	if f.loadAllFn != nil {
		return f.loadAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*employee.Employee, error) {
	if f.findByEmployeeIDFn != nil {
		return f.findByEmployeeIDFn(ctx, employeeID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) DebitBalance(ctx context.Context, employeeID string, days int) (int, error) {
	return 0, errors.New("not used in these tests")
}

type fakePendingCounter struct {
	count int64
	err   error
}

func (f *fakePendingCounter) CountPendingByEmployee(ctx context.Context, employeeID string) (int64, error) {
	return f.count, f.err
}

func sampleEmployees() []employee.Employee {
	hire := time.Date(2020, time.June, 15, 0, 0, 0, 0, time.UTC)
	return []employee.Employee{
		{EmployeeID: "1042", FullName: "Laura Gomez", HireDate: &hire, RemainingDays: 12},
		{EmployeeID: "1043", FullName: "Martin Paz", RemainingDays: 7},
	}
}

func TestEmployeeService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("cache miss loads store and fills cache", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		repo := &fakeEmployeeRepository{
			loadAllFn: func(ctx context.Context) ([]employee.Employee, error) {
				return sampleEmployees(), nil
			},
		}
		svc := employee.NewService(repo, &fakePendingCounter{}, rdb)

		expected := []employee.EmployeeResponse{
			{EmployeeID: "1042", FullName: "Laura Gomez", HireDate: "2020-06-15", RemainingDays: 12},
			{EmployeeID: "1043", FullName: "Martin Paz", RemainingDays: 7},
		}
		expectedJSON, err := json.Marshal(expected)
		assert.NoError(t, err)

		redisMock.ExpectGet(employee.ListCacheKey).RedisNil()
		redisMock.ExpectSet(employee.ListCacheKey, expectedJSON, 5*time.Second).SetVal("OK")

		resp, err := svc.GetAll(ctx)

		assert.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("cache hit skips the store", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		repo := &fakeEmployeeRepository{
			loadAllFn: func(ctx context.Context) ([]employee.Employee, error) {
				t.Fatal("store must not be read on a cache hit")
				return nil, nil
			},
		}
		svc := employee.NewService(repo, &fakePendingCounter{}, rdb)

		cached := []employee.EmployeeResponse{{EmployeeID: "1042", FullName: "Laura Gomez", RemainingDays: 12}}
		cachedJSON, _ := json.Marshal(cached)
		redisMock.ExpectGet(employee.ListCacheKey).SetVal(string(cachedJSON))

		resp, err := svc.GetAll(ctx)

		assert.NoError(t, err)
		assert.Equal(t, cached, resp)
	})

	t.Run("transient store blip is retried", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		calls := 0
		repo := &fakeEmployeeRepository{
			loadAllFn: func(ctx context.Context) ([]employee.Employee, error) {
				calls++
				if calls == 1 {
					return nil, errors.New("store blip")
				}
				return []employee.Employee{{EmployeeID: "1042", FullName: "Laura Gomez", RemainingDays: 12}}, nil
			},
		}
		svc := employee.NewService(repo, &fakePendingCounter{}, rdb)

		expectedJSON, err := json.Marshal([]employee.EmployeeResponse{
			{EmployeeID: "1042", FullName: "Laura Gomez", RemainingDays: 12},
		})
		assert.NoError(t, err)
		redisMock.ExpectGet(employee.ListCacheKey).RedisNil()
		redisMock.ExpectSet(employee.ListCacheKey, expectedJSON, 5*time.Second).SetVal("OK")

		resp, err := svc.GetAll(ctx)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, 2, calls)
	})

	t.Run("persistent store outage maps to unavailable", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		calls := 0
		repo := &fakeEmployeeRepository{
			loadAllFn: func(ctx context.Context) ([]employee.Employee, error) {
				calls++
				return nil, errors.New("store offline")
			},
		}
		svc := employee.NewService(repo, &fakePendingCounter{}, rdb)

		redisMock.ExpectGet(employee.ListCacheKey).RedisNil()

		_, err := svc.GetAll(ctx)

		assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)
		assert.Equal(t, 3, calls)
	})
}

func TestEmployeeService_GetCard(t *testing.T) {
	ctx := context.Background()

	t.Run("seniority and pending requests", func(t *testing.T) {
		hire := time.Date(2020, time.June, 15, 0, 0, 0, 0, time.UTC)
		repo := &fakeEmployeeRepository{
			findByEmployeeIDFn: func(ctx context.Context, id string) (*employee.Employee, error) {
				assert.Equal(t, "1042", id)
				return &employee.Employee{EmployeeID: "1042", FullName: "Laura Gomez", HireDate: &hire, RemainingDays: 12}, nil
			},
		}
		svc := employee.NewService(repo, &fakePendingCounter{count: 2}, nil)

		card, err := svc.GetCard(ctx, " 1042 ")

		assert.NoError(t, err)
		assert.Equal(t, "1042", card.EmployeeID)
		assert.Equal(t, 12, card.RemainingDays)
		assert.Equal(t, int64(2), card.PendingRequests)
		assert.NotEqual(t, "unknown", card.Seniority)
	})

	t.Run("missing hire date shows unknown seniority", func(t *testing.T) {
		repo := &fakeEmployeeRepository{
			findByEmployeeIDFn: func(ctx context.Context, id string) (*employee.Employee, error) {
				return &employee.Employee{EmployeeID: "1043", FullName: "Martin Paz", RemainingDays: 7}, nil
			},
		}
		svc := employee.NewService(repo, &fakePendingCounter{}, nil)

		card, err := svc.GetCard(ctx, "1043")

		assert.NoError(t, err)
		assert.Equal(t, "unknown", card.Seniority)
	})

	t.Run("unknown employee", func(t *testing.T) {
		svc := employee.NewService(&fakeEmployeeRepository{}, &fakePendingCounter{}, nil)

		_, err := svc.GetCard(ctx, "9999")
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("blank id is invalid", func(t *testing.T) {
		svc := employee.NewService(&fakeEmployeeRepository{}, &fakePendingCounter{}, nil)

		_, err := svc.GetCard(ctx, "   ")
		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})
}

func TestEmployeeService_GetSubstituteOptions(t *testing.T) {
	repo := &fakeEmployeeRepository{
		loadAllFn: func(ctx context.Context) ([]employee.Employee, error) {
			return sampleEmployees(), nil
		},
	}
	svc := employee.NewService(repo, &fakePendingCounter{}, nil)

	options, err := svc.GetSubstituteOptions(context.Background(), "1042")

	assert.NoError(t, err)
	assert.Len(t, options, 2)
	// Sentinel first, requester excluded
	assert.Equal(t, employee.SubstituteNone, options[0].Value)
	assert.Equal(t, "1043", options[1].Value)
	assert.Equal(t, "Martin Paz", options[1].Label)
}
