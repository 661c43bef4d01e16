package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/leozw/pdns-rest/internal/api/handlers"
	"github.com/leozw/pdns-rest/internal/api/middleware"
	"github.com/leozw/pdns-rest/internal/config"
	"github.com/leozw/pdns-rest/internal/metrics"
	"github.com/leozw/pdns-rest/internal/zones"
)

type Server struct {
	Config  *config.Config
	Router  *gin.Engine
	Store   zones.Store
	Metrics *metrics.Collector
	logger  *zap.Logger
}

func NewServer(cfg *config.Config, store zones.Store, logger *zap.Logger, collector *metrics.Collector) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Metrics(collector))

	server := &Server{
		Config:  cfg,
		Router:  router,
		Store:   store,
		Metrics: collector,
		logger:  logger,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	service := zones.NewService(s.Store, s.logger, s.Metrics)
	h := handlers.NewHandler(service, zones.NewParser(s.logger), s.logger)

	// Health check
	s.Router.GET("/health", h.Health)
	s.Router.GET("/ready", h.Ready)
	s.Router.GET("/metrics", gin.WrapH(s.Metrics.Handler()))

	api := s.Router.Group("/api")
	if s.Config.Auth.JWTSecret != "" {
		api.Use(middleware.AuthRequired(s.Config.Auth.JWTSecret))
	}
	if s.Config.Server.RateLimit > 0 {
		limiter := rate.NewLimiter(rate.Limit(s.Config.Server.RateLimit), s.Config.Server.RateLimitBurst)
		api.Use(middleware.RateLimit(limiter))
	}

	// Domain routes
	{
		api.PUT("/domain/:domain", h.UpdateDomain)
		api.POST("/domain/:domain", h.UpdateDomain)
		api.GET("/domain/:domain", h.GetDomain)
	}

	// Record routes
	{
		api.PUT("/record/:domain", h.UpdateRecords)
		api.POST("/record/:domain", h.UpdateRecords)
		api.GET("/record/:domain", h.ListRecords)
		api.GET("/zone/:domain", h.ExportZone)
	}

	// Supermaster routes
	{
		api.GET("/supermaster", h.ListSupermasters)
		api.PUT("/supermaster/:ip", h.UpdateSupermaster)
		api.POST("/supermaster/:ip", h.UpdateSupermaster)
	}
}
