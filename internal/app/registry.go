package app

import (
	"database/sql"
	"os"

	"github.com/Nahue18R/sistema-vacaciones/internal/auth"
	"github.com/Nahue18R/sistema-vacaciones/internal/calendar"
	"github.com/Nahue18R/sistema-vacaciones/internal/employee"
	"github.com/Nahue18R/sistema-vacaciones/internal/holiday"
	"github.com/Nahue18R/sistema-vacaciones/internal/leave"
	"github.com/Nahue18R/sistema-vacaciones/internal/messaging/kafka"
	"github.com/Nahue18R/sistema-vacaciones/internal/middleware"
	"github.com/Nahue18R/sistema-vacaciones/internal/notification"
	"github.com/Nahue18R/sistema-vacaciones/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	notifier notification.Notifier,
) error {
	policy, err := calendar.ParsePolicy(os.Getenv("LEAVE_DAY_POLICY"))
	if err != nil {
		return err
	}

	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	holidayService := holiday.NewService(holidayRepo, rdb)
	employeeService := employee.NewService(employeeRepo, leaveRepo, rdb)
	leaveService := leave.NewService(
		db,
		leaveRepo,
		employeeRepo,
		holidayService,
		counterRepo,
		outboxRepo,
		notifier,
		policy,
		os.Getenv("APPROVER_EMAIL"),
	)
	authService := auth.NewService(auth.CredentialsFromEnv(), []byte(os.Getenv("JWT_SECRET")))

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	employeeHandler := employee.NewHandler(employeeService)
	leaveHandler := leave.NewHandler(leaveService)

	// --- Global middleware ---
	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))
	router.Use(middleware.RateLimitByIP(rate.Limit(20), 40))

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		employee.RegisterRoutes(api, employeeHandler)
		leave.RegisterRoutes(api, leaveHandler, rdb)
	}

	return nil
}

// migrateSupportTables creates the raw-SQL tables that have no gorm
// entity: the outbox and the request id counter.
func migrateSupportTables(gormDB *gorm.DB) error {
	if err := gormDB.Exec(`
		CREATE TABLE IF NOT EXISTS outbox_events (
			id uuid PRIMARY KEY,
			request_id varchar(64),
			aggregate_type varchar(40) NOT NULL,
			aggregate_id varchar(40) NOT NULL,
			event_type varchar(60) NOT NULL,
			topic varchar(120) NOT NULL,
			payload jsonb NOT NULL,
			status varchar(10) NOT NULL DEFAULT 'pending',
			retry_count int NOT NULL DEFAULT 0,
			error_message varchar(500),
			next_retry_at timestamptz,
			processed_at timestamptz,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`).Error; err != nil {
		return err
	}

	return gormDB.Exec(`
		CREATE TABLE IF NOT EXISTS sheet_counters (
			counter_type varchar(40) PRIMARY KEY,
			last_value bigint NOT NULL DEFAULT 0,
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`).Error
}
