package app

import (
	"os"

	"github.com/Nahue18R/sistema-vacaciones/internal/employee"
	"github.com/Nahue18R/sistema-vacaciones/internal/holiday"
	"github.com/Nahue18R/sistema-vacaciones/internal/leave"
	"github.com/Nahue18R/sistema-vacaciones/internal/notification"
	"github.com/Nahue18R/sistema-vacaciones/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp wires infrastructure, migrations, and every module's routes.
// The returned dispatcher must be stopped on shutdown so queued
// webhooks get a chance to drain.
func BuildApp(router *gin.Engine) (*notification.Dispatcher, error) {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return nil, err
	}

	if err := gormDB.AutoMigrate(
		&employee.Employee{},
		&holiday.Holiday{},
		&leave.LeaveRequest{},
	); err != nil {
		return nil, err
	}
	if err := migrateSupportTables(gormDB); err != nil {
		return nil, err
	}

	db, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		// Redis es solo cache + idempotency; sin Redis la app sigue andando
		zap.L().Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	transport := notification.NewWebhookTransport(
		os.Getenv("WEBHOOK_SUBMITTED_URL"),
		os.Getenv("WEBHOOK_APPROVED_URL"),
	)
	dispatcher := notification.NewDispatcher(transport, 64)
	dispatcher.Start()

	if err := registerModules(router, db, gormDB, redisClient, dispatcher); err != nil {
		return nil, err
	}

	return dispatcher, nil
}
