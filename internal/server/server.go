package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"talon/internal/config"
	"talon/internal/crypto"
	"talon/internal/handler"
	"talon/internal/middleware"
	"talon/internal/models"
	"talon/internal/repository"
	"talon/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	cfg    *config.Config
	logger *zap.Logger
	log    *logrus.Logger
}

// NewServer wires repositories, services and handlers on top of db. The
// logrus logger only receives the access log.
func NewServer(db *sqlx.DB, cfg *config.Config, logger *zap.Logger, log *logrus.Logger) (*Server, error) {
	router := gin.New()
	router.Use(gin.Recovery(), accessLog(log), cors(cfg.Server.AllowedOrigins))

	s := &Server{
		router: router,
		db:     db,
		cfg:    cfg,
		logger: logger,
		log:    log,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) setupRoutes() error {
	userRepo := repository.NewUserRepository(s.db, s.logger)
	voucherRepo := repository.NewVoucherRepository(s.db, s.logger)

	tokens, err := service.NewTokenService([]byte(s.cfg.Auth.JWTSecret), s.cfg.TokenTTL(), s.logger)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}
	hasher := crypto.NewHasher(crypto.Argon2Params{
		Time:      s.cfg.Auth.Argon2.Time,
		MemoryKiB: s.cfg.Auth.Argon2.MemoryKiB,
		Threads:   s.cfg.Auth.Argon2.Threads,
	})
	authService, err := service.NewAuthService(userRepo, hasher, tokens, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}
	clock := service.SystemClock(s.cfg.Location())
	voucherService := service.NewVoucherService(voucherRepo, clock, s.logger)
	reportService := service.NewReportService(userRepo, voucherRepo, clock, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	profileHandler := handler.NewProfileHandler(authService, s.logger)
	voucherHandler := handler.NewVoucherHandler(voucherService, s.logger)
	reportHandler := handler.NewReportHandler(reportService, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := s.router.Group("/api")
	api.GET("/canteens", authHandler.ListCanteens)

	authGroup := api.Group("/auth")
	authGroup.POST("/register/canteen", authHandler.RegisterCanteen)
	authGroup.POST("/register/teacher", authHandler.RegisterTeacher)
	authGroup.POST("/login", authHandler.Login)

	profile := api.Group("/profile", middleware.Authenticate(authService, s.logger))
	{
		profile.GET("/me", profileHandler.GetMe)
		profile.PUT("/me", profileHandler.UpdateMe)
	}

	teacher := api.Group("/teacher", middleware.Authenticate(authService, s.logger, models.RoleTeacher))
	{
		teacher.POST("/vouchers", voucherHandler.Submit)
		teacher.GET("/vouchers/week", voucherHandler.ListRecent)
	}

	canteen := api.Group("/canteen", middleware.Authenticate(authService, s.logger, models.RoleCanteen))
	{
		canteen.GET("/reports/day", reportHandler.Daily)
		canteen.GET("/reports/week", reportHandler.Weekly)
	}

	return nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func accessLog(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		entry := log.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}

// cors allows the configured origins; "*" allows any.
func cors(allowed []string) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		origins[o] = struct{}{}
	}
	_, wildcard := origins["*"]

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := origins[origin]; ok || wildcard {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				c.Writer.Header().Set("Vary", "Origin")
				c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
