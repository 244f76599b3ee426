package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"surgical-clinic-backend/config"
	deliveryHttp "surgical-clinic-backend/internal/delivery/http"
	"surgical-clinic-backend/internal/delivery/http/handler"
	"surgical-clinic-backend/internal/delivery/http/middleware"
	"surgical-clinic-backend/internal/infrastructure/cache"
	"surgical-clinic-backend/internal/infrastructure/database"
	"surgical-clinic-backend/internal/repository"
	"surgical-clinic-backend/internal/service"
	"surgical-clinic-backend/internal/usecase"
	"surgical-clinic-backend/pkg/clock"
	"surgical-clinic-backend/pkg/jwt"
	"surgical-clinic-backend/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config        *config.Config
	DB            *gorm.DB
	RedisClient   *redis.Client
	Server        *http.Server
	NoShowSweeper *service.NoShowSweeper
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Apply pending schema migrations
	if err := database.RunMigrations(cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logrus.Info("Database migrations applied")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	server, sweeper := initializeServer(cfg, db, redisClient)
	app.Server = server
	app.NoShowSweeper = sweeper

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*http.Server, *service.NoShowSweeper) {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	patientRepo := repository.NewPatientRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	consultationRepo := repository.NewConsultationRepository()
	surgicalCaseRepo := repository.NewSurgicalCaseRepository()
	theaterRepo := repository.NewTheaterRepository()
	theaterBookingRepo := repository.NewTheaterBookingRepository()
	invoiceItemRepo := repository.NewInvoiceItemRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize shared infrastructure
	transactor := database.NewTransactor(db)
	clk := clock.New()
	auditService := service.NewAuditService(db, log, auditLogRepo)
	notifier := service.NewNotificationService(redisClient, log)
	sweeper := service.NewNoShowSweeper(db, log, appointmentRepo, notifier, clk, cfg.Scheduling)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, roleRepo, auditService, jwtService, redisClient)
	patientUsecase := usecase.NewPatientUsecase(db, log, transactor, patientRepo, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, transactor, appointmentRepo, patientRepo, userRepo, auditService, notifier, clk)
	consultationUsecase := usecase.NewConsultationUsecase(db, log, transactor, consultationRepo, appointmentRepo, auditService, notifier)
	surgicalCaseUsecase := usecase.NewSurgicalCaseUsecase(db, log, transactor, surgicalCaseRepo, consultationRepo, auditService, notifier, clk)
	theaterUsecase := usecase.NewTheaterUsecase(db, log, transactor, theaterRepo, auditService)
	theaterBookingUsecase := usecase.NewTheaterBookingUsecase(db, log, transactor, theaterBookingRepo, surgicalCaseRepo, theaterRepo, auditService, notifier, clk, cfg.Scheduling)
	invoiceItemUsecase := usecase.NewInvoiceItemUsecase(db, log, transactor, invoiceItemRepo, patientRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator, jwtService)
	patientHandler := handler.NewPatientHandler(patientUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	consultationHandler := handler.NewConsultationHandler(consultationUsecase, customValidator)
	surgicalCaseHandler := handler.NewSurgicalCaseHandler(surgicalCaseUsecase, customValidator)
	theaterHandler := handler.NewTheaterHandler(theaterUsecase, customValidator)
	theaterBookingHandler := handler.NewTheaterBookingHandler(theaterBookingUsecase, customValidator)
	invoiceItemHandler := handler.NewInvoiceItemHandler(invoiceItemUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		patientHandler,
		appointmentHandler,
		consultationHandler,
		surgicalCaseHandler,
		theaterHandler,
		theaterBookingHandler,
		invoiceItemHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}

	return server, sweeper
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start the no-show sweeper
	app.NoShowSweeper.Start()

	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Stop background workers before closing connections
	app.NoShowSweeper.Stop()

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
