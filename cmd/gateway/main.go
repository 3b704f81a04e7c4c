package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/di"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/handler"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/service"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/config"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/database"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/logger"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/middleware"
	pkgredis "github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/redis"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/response"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&logger.Config{
		Level:       logLevel(cfg),
		ServiceName: cfg.App.Name,
		Development: cfg.App.Debug,
		OutputPath:  "stdout",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Get()
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		log.Fatal("failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		Database:       cfg.Database.DBName,
		SSLMode:        cfg.Database.SSLMode,
		MaxConns:       int32(cfg.Database.MaxOpenConns),
		MinConns:       int32(cfg.Database.MaxIdleConns),
		MaxConnLife:    cfg.Database.ConnMaxLifetime,
		MaxConnIdle:    cfg.Database.ConnMaxIdleTime,
		MaxRetries:     3,
		RetryInterval:  2 * time.Second,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := pkgredis.New(ctx, &pkgredis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	container := di.NewContainer(&di.ContainerConfig{
		DB:    db,
		Redis: redisClient,
		ServiceConfig: &service.AuthServiceConfig{
			JWTSecret:      cfg.JWT.Secret,
			AccessTokenTTL: cfg.JWT.AccessTokenTTL,
			Issuer:         cfg.JWT.Issuer,
		},
	})

	auditLogger := middleware.NewAuditLogger(middleware.DefaultAuditConfig(db.Pool()))
	defer auditLogger.Close()

	router := setupRouter(cfg, container, auditLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("gateway listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errChan:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	log.Info("gateway stopped")
}

func setupRouter(cfg *config.Config, c *di.Container, auditLogger *middleware.AuditLogger) *gin.Engine {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.AuditMiddleware(auditLogger))

	router.GET("/health", c.HealthHandler.Liveness)
	router.GET("/ready", c.HealthHandler.Readiness)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signin", c.AuthHandler.SignIn)
			auth.POST("/signout", c.AuthHandler.SignOut)
			auth.GET("/session", c.AuthHandler.CurrentSession)
			auth.POST("/change-password", c.AuthHandler.ChangePassword)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.JWTMiddleware(&middleware.JWTConfig{Secret: cfg.JWT.Secret}))
		admin.Use(middleware.RequireRole(string(domain.RoleAdmin)))
		{
			admin.POST("/create-agency-user", c.ProvisioningHandler.CreateAgencyUser)

			agencies := admin.Group("/agencies")
			{
				agencies.POST("", c.AgencyHandler.Create)
				agencies.GET("", c.AgencyHandler.List)
				agencies.GET("/:id", c.AgencyHandler.GetByID)
				agencies.PUT("/:id", c.AgencyHandler.Update)
				agencies.DELETE("/:id", c.AgencyHandler.Delete)
			}
		}

		api.GET("/agencies/slug/:slug", c.AgencyHandler.GetBySlug)
	}

	// Tenant-scoped pages. The guard decides render vs redirect for every
	// navigation under /:slug/.
	pages := router.Group("/:slug")
	pages.Use(c.Guard.Handler())
	{
		pages.GET("", renderPage)
		pages.GET("/*page", renderPage)
	}

	return router
}

// renderPage stands in for the tenant frontend. The guard has already
// resolved the agency and identity by the time this runs.
func renderPage(c *gin.Context) {
	agency, _ := handler.AgencyFromContext(c)
	identity, _ := handler.IdentityFromContext(c)

	payload := gin.H{"path": c.Request.URL.Path}
	if agency != nil {
		payload["agency"] = gin.H{
			"slug":          agency.Slug,
			"name":          agency.Name,
			"logo_url":      agency.LogoURL,
			"primary_color": agency.PrimaryColor,
		}
	}
	if identity != nil {
		payload["user"] = gin.H{
			"id":    identity.ID,
			"email": identity.Email,
			"role":  identity.Role,
		}
	}

	c.JSON(http.StatusOK, response.Success(payload))
}

func logLevel(cfg *config.Config) string {
	if cfg.App.Debug {
		return "debug"
	}
	return "info"
}
