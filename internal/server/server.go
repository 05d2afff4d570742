package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crusade-dev/crusaded/internal/auth"
	"github.com/crusade-dev/crusaded/internal/campaign"
	"github.com/crusade-dev/crusaded/internal/config"
	"github.com/crusade-dev/crusaded/internal/models"
	"github.com/crusade-dev/crusaded/internal/rules"
)

// Server represents the HTTP server
type Server struct {
	router          *gin.Engine
	db              *gorm.DB
	config          *config.Config
	logger          zerolog.Logger
	validator       *validator.Validate
	asynqClient     *asynq.Client
	tokens          *auth.TokenManager
	sessions        *auth.Resolver
	admins          auth.AllowList
	campaignService *campaign.Service
	rulesDoc        *rules.Document
	version         string
}

// New creates a new server instance. Database initialization failure is
// fatal: every page depends on it.
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	// Initialize database with production settings
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	// Run database migrations
	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	// Seed the default hex map on first run
	if err := models.SeedDefaultMap(db); err != nil {
		return nil, err
	}

	// Cookie authentication. An empty AUTH_SECRET is non-fatal: the server
	// runs in degraded mode and says so loudly.
	tokens := auth.NewTokenManager(cfg.Auth.Secret)
	if tokens.Insecure() {
		zlog.Warn().Msg("AUTH_SECRET is not set - auth cookies are insecure and carry no integrity guarantee")
	}

	admins := auth.ParseAllowList(cfg.Auth.AdminEmails)
	if len(admins) == 0 {
		zlog.Info().Msg("ADMIN_EMAILS is empty - no admin accounts")
	}

	sessions := auth.NewResolver(db, tokens, admins, zlog)

	// Initialize validator
	validate := validator.New()

	// Register custom validators
	validate.RegisterValidation("battletype", func(fl validator.FieldLevel) bool {
		_, ok := models.BattleTypeLabels[fl.Field().String()]
		return ok
	})
	validate.RegisterValidation("winningside", func(fl validator.FieldLevel) bool {
		_, ok := models.SideLabels[fl.Field().String()]
		return ok
	})

	// Initialize Asynq client for enqueueing tasks
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	// Campaign engine
	campaignService := campaign.NewService(db, zlog)

	// Rules document (embedded)
	rulesDoc, err := rules.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load rules document: %w", err)
	}

	// Create server
	server := &Server{
		db:              db,
		config:          cfg,
		logger:          zlog,
		validator:       validate,
		asynqClient:     asynqClient,
		tokens:          tokens,
		sessions:        sessions,
		admins:          admins,
		campaignService: campaignService,
		rulesDoc:        rulesDoc,
		version:         version,
	}

	// Setup router
	server.setupRouter()

	return server, nil
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns    = 8    // Reduced for SQLite efficiency
		maxIdleConns    = 4    // Reduced proportionally
		connMaxLifetime = 300  // 5 minutes
		busyTimeout     = 5000 // 5 seconds
	)

	// Open database connection
	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool settings
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL mode must be set first for decent concurrent read behavior
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		"PRAGMA foreign_keys=1",
		"PRAGMA temp_store=2",
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// CORS middleware
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Session resolution runs on every request and never rejects: a bad or
	// missing cookie means an anonymous session, not an error.
	s.router.Use(SessionMiddleware(s.sessions))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Public endpoints
	s.router.POST("/api/auth/register", s.register)
	s.router.POST("/api/auth/login", s.login)
	s.router.POST("/api/auth/logout", s.logout)
	s.router.GET("/api/meta", s.getMeta)
	s.router.GET("/api/rules", s.getRules)
	s.router.GET("/api/territories", s.listTerritories)
	s.router.GET("/api/dashboard", s.getDashboard)
	s.router.GET("/api/pages", s.listPages)

	// Page registry: every page renders for its route; pages that need a
	// signed-in user enforce it themselves via RequireAuthMiddleware.
	for _, page := range AllPages {
		s.registerPage(page)
	}

	// Authenticated API routes
	api := s.router.Group("/api")
	api.Use(RequireAuthMiddleware(s.logger))
	{
		api.GET("/auth/me", s.getCurrentUser)
		api.GET("/battles", s.listBattles)
		api.POST("/battles", s.logBattle)
		api.DELETE("/battles", s.deleteBattles)

		// Admin only
		adminRoutes := api.Group("")
		adminRoutes.Use(AdminOnlyMiddleware(s.logger))
		{
			adminRoutes.POST("/recalculate", s.triggerRecalculation)
		}
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "online",
		"timestamp":        time.Now().UTC(),
		"service":          "crusaded-api",
		"title":            s.config.AppTitle,
		"insecure_cookies": s.config.InsecureCookies(),
	})
}

// GetDB returns the database connection for use by workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Router exposes the configured handler, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	addr := ":" + s.config.Server.Port

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	// Close Asynq client
	if err := s.asynqClient.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Error closing Asynq client")
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")

	// Close database connection to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	return nil
}
