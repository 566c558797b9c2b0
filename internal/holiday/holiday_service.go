package holiday

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Nahue18R/sistema-vacaciones/internal/shared/apperror"
	"github.com/Nahue18R/sistema-vacaciones/internal/shared/retry"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	datesCacheKey = "holidays:dates"

	// The holiday sheet changes a handful of times a year; a long TTL
	// is fine and matches how the sheet was read before.
	datesCacheTTL = 10 * time.Minute
)

//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock
type Service interface {
	// Dates returns every holiday date, cached.
	Dates(ctx context.Context) ([]time.Time, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	return &service{repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) Dates(ctx context.Context) ([]time.Time, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, datesCacheKey).Result(); err == nil {
			var dates []time.Time
			if json.Unmarshal([]byte(cached), &dates) == nil {
				return dates, nil
			}
		}
	}

	v, err, _ := s.sf.Do(datesCacheKey, func() (interface{}, error) {
		rows, err := retry.Read(ctx, func() ([]Holiday, error) {
			return s.repo.LoadAll(ctx)
		})
		if err != nil {
			s.logger.Error("load holidays failed", zap.Error(err))
			return nil, apperror.ErrStoreUnavailable
		}

		dates := make([]time.Time, len(rows))
		for i, h := range rows {
			dates[i] = h.Date
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(dates); err == nil {
				s.rdb.Set(ctx, datesCacheKey, jsonData, datesCacheTTL)
			}
		}

		return dates, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]time.Time), nil
}
