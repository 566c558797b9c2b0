package leave

import (
	"github.com/Nahue18R/sistema-vacaciones/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.POST("", middleware.IdempotencyMiddleware(rdb), handler.Submit)
		leaves.GET("", handler.GetAll)
		leaves.GET("/pending", handler.GetPending)
		leaves.GET("/employee/:employee_id", handler.HistoryByEmployee)
		leaves.POST("/:id/approve", handler.Approve)
		leaves.POST("/:id/reject", handler.Reject)
	}

	schedule := r.Group("/schedule")
	schedule.Use(middleware.AuthMiddleware())
	{
		schedule.GET("/events", handler.CalendarEvents)
	}
}
