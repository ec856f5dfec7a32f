package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hms-ipd-backend/internal/config"
	"hms-ipd-backend/internal/database"
	"hms-ipd-backend/internal/handler"
	"hms-ipd-backend/internal/middleware"
	"hms-ipd-backend/internal/repository"
	"hms-ipd-backend/internal/service"
	"hms-ipd-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()
	log.Println("Configuration loaded successfully")

	// 2. Initialize JWT utilities with config
	utils.InitJWT(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// 3. Structured logger for services and the background worker
	logger, err := zap.NewProduction()
	if cfg.Server.GinMode != "release" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 4. Initialize database connection and schema
	db := database.Connect(cfg)
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 5. Initialize repositories
	userRepo := repository.NewUserRepo(db)
	patientRepo := repository.NewPatientRepo(db)
	doctorRepo := repository.NewDoctorRepo(db)
	wardRepo := repository.NewWardRepo(db)
	ruleRepo := repository.NewPriorityRuleRepo(db)
	stores := repository.NewStores(db)
	txManager := repository.NewTxManager(db)

	// 6. Initialize services
	authService := service.NewAuthService(userRepo)
	evaluator := service.NewPriorityEvaluator(ruleRepo)
	admissionService := service.NewAdmissionService(txManager, stores, patientRepo, doctorRepo, evaluator, logger)
	transferService := service.NewTransferService(txManager, stores, admissionService, doctorRepo, logger)
	queueService := service.NewQueueService(stores)
	bedService := service.NewBedService(txManager, stores, wardRepo, logger)
	workerService := service.NewWorkerService(stores, logger, cfg.Worker.JustificationInterval)

	// 7. Start justification watchdog in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go workerService.Start(ctx)

	// 8. Setup Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// 9. Setup Gin router
	r := gin.Default()

	// Apply CORS middleware
	r.Use(middleware.CORS(cfg))

	// 10. Register handlers
	authHandler := handler.NewAuthHandler(authService)
	admissionHandler := handler.NewAdmissionHandler(admissionService, evaluator)
	transferHandler := handler.NewTransferHandler(transferService)
	queueHandler := handler.NewQueueHandler(queueService)
	bedHandler := handler.NewBedHandler(bedService)

	// 11. Define routes
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "hms-ipd-backend",
		})
	})

	// Auth routes (public)
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	// IPD routes (authenticated)
	ipd := r.Group("/ipd")
	ipd.Use(middleware.AuthMiddleware())
	{
		admissions := ipd.Group("/admissions")
		{
			admissions.POST("", admissionHandler.Admit)
			admissions.GET("", admissionHandler.List)
			admissions.GET("/:id", admissionHandler.Get)
			admissions.POST("/:id/shift", admissionHandler.ShiftToWard)
			admissions.POST("/:id/transfer", admissionHandler.Transfer)
			admissions.POST("/:id/discharge", admissionHandler.Discharge)
			admissions.POST("/:id/cancel", admissionHandler.Cancel)
			admissions.GET("/:id/status-history", admissionHandler.StatusHistory)
			admissions.GET("/:id/priority-history", admissionHandler.PriorityHistory)

			// Authority-only
			admissions.POST("/:id/priority/override", middleware.RequireAuthority(), admissionHandler.OverridePriority)
		}

		ipd.GET("/queue", queueHandler.List)
		ipd.POST("/priority/evaluate", admissionHandler.EvaluatePriority)

		transfers := ipd.Group("/transfers")
		{
			transfers.POST("", transferHandler.Recommend)
			transfers.GET("/pending-justifications", transferHandler.PendingJustifications)
			transfers.POST("/full", middleware.RequireAuthority(), transferHandler.FullTransfer)
			transfers.GET("/:id", transferHandler.Get)
			transfers.GET("/:id/history", transferHandler.History)
			transfers.POST("/:id/consent", transferHandler.RecordConsent)
			transfers.POST("/:id/confirm-bed", transferHandler.ConfirmBed)
			transfers.POST("/:id/execute", transferHandler.Execute)
			transfers.POST("/:id/cancel", transferHandler.Cancel)
			transfers.POST("/:id/justification", transferHandler.RecordJustification)
		}
	}

	// Ward/bed administration (ADMIN only)
	wards := r.Group("/wards")
	wards.Use(middleware.AuthMiddleware(), middleware.RequireAdmin())
	{
		wards.POST("", bedHandler.CreateWard)
		wards.GET("", bedHandler.ListWards)
		wards.POST("/:id/beds", bedHandler.CreateBed)
		wards.GET("/:id/beds", bedHandler.ListBeds)
	}
	beds := r.Group("/beds")
	beds.Use(middleware.AuthMiddleware(), middleware.RequireAdmin())
	{
		beds.PATCH("/:id/status", bedHandler.SetStatus)
		beds.DELETE("/:id", bedHandler.Deactivate)
	}

	// 12. Setup graceful shutdown
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := r.Run(":" + cfg.Server.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel background worker context
	cancel()
	log.Println("Server exited")
}
