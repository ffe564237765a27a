package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kpiflow/internal/config"
	"kpiflow/internal/constants"
	"kpiflow/internal/database"
	"kpiflow/internal/handlers"
	"kpiflow/internal/logging"
	"kpiflow/internal/middleware"
	"kpiflow/internal/notify"
	"kpiflow/internal/repository"
	"kpiflow/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logging.New(cfg.GinMode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations and seed the admin credential
	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := database.SeedAdminCredential(database.GetDB(), cfg.AdminPassword); err != nil {
		logger.Fatal("Failed to seed admin credential", zap.Error(err))
	}

	// Stores
	db := database.GetDB()
	taskStore := repository.NewTaskStore(db, logger)
	directory := repository.NewEmployeeDirectory(db)
	departments := repository.NewDepartmentStore(db)
	settings := repository.NewSettingsStore(db)

	// External collaborators
	sender := notify.NewEmailSender(cfg, logger)
	calendar := notify.NewLogCalendar(logger)

	// Services
	authService := services.NewAuthService(directory, settings)
	taskService := services.NewTaskService(taskStore, directory, sender, logger)
	reviewService := services.NewReviewService(taskStore, directory, sender, calendar, logger)
	directoryService := services.NewDirectoryService(directory, departments)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	adminHandler := handlers.NewAdminHandler(directoryService)

	// Initialize Gin router with cookie-backed sessions
	r := gin.Default()
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionName, store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "KPI workflow API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Task routes (owner operations)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/dashboard", taskHandler.Dashboard)
			tasks.POST("/:id/submit", taskHandler.SubmitTask)
			tasks.POST("/:id/resubmit", taskHandler.ResubmitTask)
			tasks.POST("/:id/progress", taskHandler.ReportProgress)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		// Review routes (manager operations)
		review := api.Group("/review")
		review.Use(middleware.RequireAuth(), middleware.RequireManager(directory))
		{
			review.GET("/pending", reviewHandler.Pending)
			review.GET("/team", reviewHandler.Team)
			review.POST("/approve", reviewHandler.Approve)
			review.POST("/reject", reviewHandler.Reject)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			admin.GET("/employees", adminHandler.ListEmployees)
			admin.POST("/employees", adminHandler.UpsertEmployee)
			admin.POST("/employees/import", adminHandler.ImportEmployees)
			admin.GET("/departments", adminHandler.ListDepartments)
			admin.POST("/departments/import", adminHandler.ImportDepartments)
		}
	}

	// Start server
	logger.Info("Server starting", zap.String("addr", cfg.ListenAddr))
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
