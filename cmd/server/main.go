package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brightsteps/internal/config"
	"brightsteps/internal/database"
	"brightsteps/internal/handlers"
	"brightsteps/internal/repository"
	"brightsteps/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Connect(cfg.DatabaseType, cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	childRepo := repository.NewChildRepository(db)
	relationshipRepo := repository.NewRelationshipRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	programRepo := repository.NewProgramRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Initialize services
	notifyService, err := service.NewNotifyService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName)
	if err != nil {
		log.Fatalf("Failed to initialize notification service: %v", err)
	}
	if notifyService.Enabled() {
		log.Printf("Email notifications enabled (from: %s)", cfg.SESFromEmail)
	} else {
		log.Println("Email notifications disabled")
	}

	associationService := service.NewAssociationService(requestRepo, relationshipRepo, childRepo, userRepo, notifyService)
	adminService := service.NewAdminService(userRepo, auditRepo, notifyService)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, programRepo, childRepo, relationshipRepo)

	// Initialize handlers
	middleware := handlers.NewMiddleware(userRepo)
	parentHandler := handlers.NewParentHandler(associationService, enrollmentService)
	adminHandler := handlers.NewAdminHandler(associationService, adminService, enrollmentService)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handlers.Health)

	// Parent routes
	mux.HandleFunc("POST /api/requests", middleware.RequireUser(middleware.RateLimit(parentHandler.SubmitRequest)))
	mux.HandleFunc("GET /api/requests", middleware.RequireUser(parentHandler.ListRequests))
	mux.HandleFunc("GET /api/children", middleware.RequireUser(parentHandler.ListChildren))
	mux.HandleFunc("GET /api/programs", middleware.RequireUser(parentHandler.ListPrograms))
	mux.HandleFunc("GET /api/programs/{id}/occupancy", middleware.RequireUser(parentHandler.GetProgramOccupancy))
	mux.HandleFunc("POST /api/enrollments", middleware.RequireUser(middleware.RateLimit(parentHandler.RequestEnrollment)))
	mux.HandleFunc("GET /api/enrollments", middleware.RequireUser(parentHandler.ListEnrollments))

	// Admin routes
	mux.HandleFunc("GET /api/admin/requests", middleware.RequireAdmin(adminHandler.ListPendingRequests))
	mux.HandleFunc("POST /api/admin/requests/{id}/review", middleware.RequireAdmin(adminHandler.ReviewRequest))
	mux.HandleFunc("POST /api/admin/relationships", middleware.RequireAdmin(adminHandler.LinkChild))
	mux.HandleFunc("PUT /api/admin/children/{id}", middleware.RequireAdmin(adminHandler.UpdateChild))
	mux.HandleFunc("GET /api/admin/users", middleware.RequireAdmin(adminHandler.ListUsers))
	mux.HandleFunc("POST /api/admin/users/bulk", middleware.RequireAdmin(adminHandler.BulkUserAction))
	mux.HandleFunc("GET /api/admin/users/floor-check", middleware.RequireAdmin(adminHandler.CheckAdminFloor))
	mux.HandleFunc("GET /api/admin/programs", middleware.RequireAdmin(adminHandler.ListAllPrograms))
	mux.HandleFunc("POST /api/admin/programs", middleware.RequireAdmin(adminHandler.CreateProgram))
	mux.HandleFunc("PUT /api/admin/programs/{id}", middleware.RequireAdmin(adminHandler.UpdateProgram))
	mux.HandleFunc("GET /api/admin/programs/{id}/enrollments", middleware.RequireAdmin(adminHandler.ListProgramEnrollments))
	mux.HandleFunc("PUT /api/admin/enrollments/{id}/status", middleware.RequireAdmin(adminHandler.SetEnrollmentStatus))
	mux.HandleFunc("GET /api/admin/audit", middleware.RequireAdmin(adminHandler.ListAuditEntries))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
