package server

import (
	"fmt"
	"net/http"
	"time"

	"ecostore/internal/config"
	"ecostore/internal/database"
	custommiddleware "ecostore/internal/middleware"
	"ecostore/internal/repository"
	"ecostore/internal/service"
	"ecostore/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// NewServer wires repositories, services and handlers onto one router.
// redisClient may be nil, in which case rate limiting is off.
func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	router := chi.NewRouter()
	errorHandler := custommiddleware.NewErrorHandler(logger, cfg.Server.IsProduction())

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(errorHandler.Recoverer)
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins))

	if cfg.RateLimit.Enabled && redisClient != nil {
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "ecostore:ratelimit",
		}, logger))
	}

	router.NotFound(errorHandler.NotFound)
	router.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.DB())
	categoryRepo := repository.NewCategoryRepository(db.DB())

	// Initialize services
	productService := service.NewProductService(productRepo, categoryRepo)

	// Register routes
	transport.NewHealthHandler(db).RegisterRoutes(router)
	transport.NewProductHandler(productService, errorHandler, logger).RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

// Close releases the database pool and the Redis client.
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	var firstErr error
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
			firstErr = err
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
