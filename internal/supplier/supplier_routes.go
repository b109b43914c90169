package supplier

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
	suppliers := r.Group("/suppliers")
	suppliers.Use(middleware.AuthMiddleware())
	suppliers.Use(middleware.ContextLogger(logger))
	{
		suppliers.GET("",
			middleware.RateLimitByUser(3, 10),
			handler.GetAll,
		)

		suppliers.GET("/options",
			middleware.RateLimitByUser(5, 20),
			handler.GetOptions,
		)

		suppliers.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			handler.GetById,
		)

		suppliers.POST("",
			middleware.RateLimitByUser(0.5, 2),
			handler.Create,
		)

		suppliers.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			handler.Update,
		)

		suppliers.DELETE("/:id",
			middleware.RateLimitByUser(0.1, 1),
			handler.Delete,
		)
	}
}
