package app

import (
	"database/sql"

	"go-compras/internal/auth"
	"go-compras/internal/bootstrap"
	"go-compras/internal/employee"
	"go-compras/internal/messaging/kafka"
	"go-compras/internal/middleware"
	"go-compras/internal/purchaserequest"
	"go-compras/internal/shared/counter"
	"go-compras/internal/supplier"
	"go-compras/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	router.Use(middleware.RequestID())

	// --- Repositories ---
	userRepo := user.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	supplierRepo := supplier.NewRepository(gormDB)
	requestRepo := purchaserequest.NewRepository(gormDB)
	tokenRepo := auth.NewTokenRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	auditLogger := bootstrap.NewStdoutAuditLogger()
	employeeService := employee.NewService(db, employeeRepo, userRepo, rdb, auditLogger)
	supplierService := supplier.NewService(db, supplierRepo, employeeService, rdb, auditLogger)
	requestService := purchaserequest.NewService(db, requestRepo, counterRepo, outboxRepo)
	authService := auth.NewService(db, tokenRepo, userRepo, outboxRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	employeeHandler := employee.NewHandler(employeeService)
	supplierHandler := supplier.NewHandler(supplierService)
	requestHandler := purchaserequest.NewHandler(requestService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		employee.RegisterRoutes(api, employeeHandler, logger)
		supplier.RegisterRoutes(api, supplierHandler, logger)
		purchaserequest.RegisterRoutes(api, requestHandler, logger)
	}

	return nil
}
