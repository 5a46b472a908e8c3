package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cleanhome-backend/config"
	deliveryHttp "cleanhome-backend/internal/delivery/http"
	"cleanhome-backend/internal/delivery/http/handler"
	"cleanhome-backend/internal/delivery/http/middleware"
	"cleanhome-backend/internal/infrastructure/cache"
	"cleanhome-backend/internal/infrastructure/database"
	"cleanhome-backend/internal/repository"
	"cleanhome-backend/internal/service"
	"cleanhome-backend/internal/usecase"
	"cleanhome-backend/pkg/jwt"
	"cleanhome-backend/pkg/validator"
	"cleanhome-backend/pkg/vnpay"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	log := setupLogger(cfg.App.LogLevel)
	app.Log = log
	log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(db); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Database migrations applied")
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	// Initialize all layers
	server, err := initializeServer(cfg, log, db, redisClient)
	if err != nil {
		return nil, err
	}
	app.Server = server

	return app, nil
}

// setupLogger configures the logrus logger. The standard logger is set up the
// same way so packages that log through logrus directly share the format.
func setupLogger(level string) *logrus.Logger {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(lvl)

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(lvl)
	return log
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, log *logrus.Logger, db *gorm.DB, redisClient *redis.Client) (*http.Server, error) {
	jwtService := jwt.NewJWTService(cfg.JWT)

	signer, err := vnpay.NewSigner(cfg.VNPay.HashSecret, cfg.VNPay.HashAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to create VNPay signer: %w", err)
	}

	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	serviceRepo := repository.NewServiceRepository()
	bookingRepo := repository.NewBookingRepository()
	bookingItemRepo := repository.NewBookingItemRepository()
	ledgerRepo := repository.NewGatewayTransactionRepository()
	assignmentRepo := repository.NewStaffAssignmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	store := cache.NewRedisStore(redisClient)
	revocationService := service.NewTokenRevocationService(store)
	resetCodeService := service.NewResetCodeService(store, cfg.Auth.ResetCodeTTL)
	notifier := service.NewLogNotifier(log)
	auditService := service.NewAuditService(log, auditLogRepo)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, roleRepo, jwtService, revocationService, resetCodeService, notifier, auditService)
	serviceUsecase := usecase.NewServiceUsecase(db, log, serviceRepo, auditService)
	paymentUsecase := usecase.NewPaymentUsecase(db, log, cfg, signer, bookingRepo, ledgerRepo, auditService)
	bookingUsecase := usecase.NewBookingUsecase(db, log, bookingRepo, serviceRepo, assignmentRepo, ledgerRepo, paymentUsecase, auditService)
	adminBookingUsecase := usecase.NewAdminBookingUsecase(db, log, bookingRepo, userRepo, assignmentRepo, ledgerRepo, auditService)
	staffStatsUsecase := usecase.NewStaffStatsUsecase(db, log, userRepo, bookingRepo, bookingItemRepo, assignmentRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	serviceHandler := handler.NewServiceHandler(serviceUsecase, customValidator)
	bookingHandler := handler.NewBookingHandler(bookingUsecase, customValidator)
	paymentHandler := handler.NewPaymentHandler(log, paymentUsecase, customValidator)
	adminBookingHandler := handler.NewAdminBookingHandler(adminBookingUsecase, customValidator)
	staffHandler := handler.NewStaffHandler(staffStatsUsecase)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(log, jwtService, revocationService)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.FrontendURL)

	router := deliveryHttp.NewRouter(
		authHandler,
		serviceHandler,
		bookingHandler,
		paymentHandler,
		adminBookingHandler,
		staffHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
	)
	httpRouter := router.Setup()

	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
