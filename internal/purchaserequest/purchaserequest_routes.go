package purchaserequest

import (
	"go-compras/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	logger *zap.Logger,
) {
	requests := r.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	requests.Use(middleware.ContextLogger(logger))
	{
		requests.GET("",
			middleware.RateLimitByUser(3, 10),
			handler.GetAll,
		)

		requests.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			handler.GetById,
		)

		requests.POST("",
			middleware.RateLimitByUser(1, 3),
			handler.Create,
		)

		requests.PUT("/:id",
			middleware.RateLimitByUser(1, 3),
			handler.Update,
		)

		requests.POST("/:id/approve",
			middleware.RateLimitByUser(0.5, 2),
			handler.Approve,
		)

		requests.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			handler.Delete,
		)
	}
}
