package employee

import (
	"github.com/Nahue18R/sistema-vacaciones/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("", handler.GetAll)
		employees.GET("/options", handler.GetSubstituteOptions)
		employees.GET("/:id/card", handler.GetCard)
	}
}
