package employee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	employeeerrors "github.com/Nahue18R/sistema-vacaciones/internal/employee/errors"
	"github.com/Nahue18R/sistema-vacaciones/internal/shared/apperror"
	"github.com/Nahue18R/sistema-vacaciones/internal/shared/retry"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	ListCacheKey = "employees:list"

	// The personnel sheet tolerates short staleness for display reads.
	// Balance debits never go through this cache.
	listCacheTTL = 5 * time.Second
)

// SubstituteNone is the sentinel for "no substitute assigned".
const SubstituteNone = "none"

// PendingCounter is satisfied by the leave repository; declared here so
// the employee card can show open requests without an import cycle.
type PendingCounter interface {
	CountPendingByEmployee(ctx context.Context, employeeID string) (int64, error)
}

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetCard(ctx context.Context, employeeID string) (EmployeeCardResponse, error)
	GetSubstituteOptions(ctx context.Context, excludeEmployeeID string) ([]SubstituteOption, error)
}

type service struct {
	repo    Repository
	pending PendingCounter
	rdb     *redis.Client
	sf      *singleflight.Group
	logger  *zap.Logger
}

func NewService(repo Repository, pending PendingCounter, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		repo:    repo,
		pending: pending,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		logger:  l,
	}
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	// 1. Mirar primero en Redis
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, ListCacheKey).Result(); err == nil {
			var resp []EmployeeResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// 2. Singleflight para que una ráfaga de aperturas del formulario no inunde el store
	v, err, _ := s.sf.Do(ListCacheKey, func() (interface{}, error) {
		employees, err := retry.Read(ctx, func() ([]Employee, error) {
			return s.repo.LoadAll(ctx)
		})
		if err != nil {
			s.logger.Error("load employees failed", zap.Error(err))
			return nil, apperror.ErrStoreUnavailable
		}

		resp := mapToListResponse(employees)

		// 3. Guardar el snapshot en Redis con TTL corto
		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, ListCacheKey, jsonData, listCacheTTL)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]EmployeeResponse), nil
}

func (s *service) GetCard(ctx context.Context, employeeID string) (EmployeeCardResponse, error) {
	id := NormalizeID(employeeID)
	if id == "" {
		return EmployeeCardResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	emp, err := s.repo.FindByEmployeeID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeCardResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		s.logger.Error("employee card lookup failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeCardResponse{}, err
	}

	var pendingCount int64
	if s.pending != nil {
		pendingCount, err = s.pending.CountPendingByEmployee(ctx, id)
		if err != nil {
			s.logger.Error("pending count failed", zap.String("employee_id", id), zap.Error(err))
			return EmployeeCardResponse{}, err
		}
	}

	return EmployeeCardResponse{
		EmployeeID:      emp.EmployeeID,
		FullName:        emp.FullName,
		RemainingDays:   emp.RemainingDays,
		Seniority:       formatSeniority(*emp, time.Now()),
		PendingRequests: pendingCount,
	}, nil
}

func (s *service) GetSubstituteOptions(ctx context.Context, excludeEmployeeID string) ([]SubstituteOption, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	exclude := NormalizeID(excludeEmployeeID)
	options := make([]SubstituteOption, 0, len(all)+1)
	options = append(options, SubstituteOption{
		Value: SubstituteNone,
		Label: "No substitute required",
	})
	for _, e := range all {
		if e.EmployeeID == exclude {
			continue
		}
		options = append(options, SubstituteOption{
			Value: e.EmployeeID,
			Label: e.FullName,
		})
	}
	return options, nil
}

func formatSeniority(e Employee, now time.Time) string {
	years := e.SeniorityYears(now)
	if years < 0 {
		return "unknown"
	}
	if years == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", years)
}

func mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		EmployeeID:    e.EmployeeID,
		FullName:      e.FullName,
		RemainingDays: e.RemainingDays,
	}
	if e.HireDate != nil {
		resp.HireDate = e.HireDate.Format("2006-01-02")
	}
	return resp
}

func mapToListResponse(employees []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = mapToResponse(e)
	}
	return resp
}
