package di

import (
	"github.com/redis/go-redis/v9"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/handler"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/repository"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/service"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/database"
)

// Container holds all dependencies for the gateway service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	AgencyRepo   repository.AgencyRepository
	UserRepo     repository.UserRepository
	SessionStore repository.SessionStore

	// Services
	AuthService         service.AuthService
	AgencyService       service.AgencyService
	ProvisioningService service.ProvisioningService

	// Handlers
	HealthHandler       *handler.HealthHandler
	AuthHandler         *handler.AuthHandler
	AgencyHandler       *handler.AgencyHandler
	ProvisioningHandler *handler.ProvisioningHandler
	Guard               *handler.GuardMiddleware
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB            *database.PostgresDB
	Redis         *redis.Client
	ServiceConfig *service.AuthServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:    cfg.DB,
		Redis: cfg.Redis,
	}

	// Initialize repositories
	c.AgencyRepo = repository.NewPostgresAgencyRepository(cfg.DB.Pool())
	c.UserRepo = repository.NewPostgresUserRepository(cfg.DB.Pool())
	c.SessionStore = repository.NewRedisSessionStore(cfg.Redis)

	// Initialize services
	c.AuthService = service.NewAuthService(c.UserRepo, c.SessionStore, cfg.ServiceConfig)
	c.AgencyService = service.NewAgencyService(c.AgencyRepo)
	c.ProvisioningService = service.NewProvisioningService(c.UserRepo, c.AgencyService)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService, cfg.ServiceConfig.JWTSecret)
	c.AgencyHandler = handler.NewAgencyHandler(c.AgencyService)
	c.ProvisioningHandler = handler.NewProvisioningHandler(c.ProvisioningService)
	c.Guard = handler.NewGuardMiddleware(c.AgencyService, c.AuthService)

	return c
}
