package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mailfleet/mailfleet/api/handlers"
	"github.com/mailfleet/mailfleet/api/middleware"
	"github.com/mailfleet/mailfleet/config"
	"github.com/mailfleet/mailfleet/internal/logger"
	"github.com/mailfleet/mailfleet/internal/repository"
	"github.com/mailfleet/mailfleet/internal/tracing"
	"github.com/mailfleet/mailfleet/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, cfg *config.Config, log logger.Logger, s *services.Services, repos *repository.Repositories) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	apiHandlers := handlers.InitHandlers(cfg, log, s, repos)

	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiLimiter := middleware.RateLimitMiddleware(
		cfg.RateLimitConfig.APIRequests,
		time.Duration(cfg.RateLimitConfig.APIWindowMinutes)*time.Minute,
		"Too many requests, please try again later",
	)
	// The send endpoints get a much tighter quota; hammering an SMTP
	// account is the fastest way to get it suspended upstream.
	sendLimiter := middleware.RateLimitMiddleware(
		cfg.RateLimitConfig.SendRequests,
		time.Duration(cfg.RateLimitConfig.SendWindowMinutes)*time.Minute,
		"Send limit reached, please slow down",
	)

	auth := r.Group("/api/auth")
	auth.Use(apiLimiter)
	{
		auth.POST("/register", apiHandlers.Auth.Register())
		auth.POST("/login", apiHandlers.Auth.Login())
	}

	api := r.Group("/api")
	api.Use(apiLimiter)
	api.Use(middleware.AuthMiddleware(apiHandlers.JWT))
	api.Use(middleware.TracingMiddleware())
	{
		companies := api.Group("/companies")
		{
			companies.GET("", apiHandlers.Companies.List())
			companies.POST("", apiHandlers.Companies.Create())
			companies.PUT("/:id", apiHandlers.Companies.Update())
			companies.DELETE("/:id", apiHandlers.Companies.Delete())
			companies.POST("/:id/test-email", sendLimiter, apiHandlers.Companies.TestEmail())
		}

		emails := api.Group("/emails")
		{
			emails.POST("/send", sendLimiter, apiHandlers.Emails.Send())
			emails.POST("/send-bulk", sendLimiter, apiHandlers.Emails.SendBulk())
			emails.GET("", apiHandlers.Emails.List())
			emails.GET("/:id", apiHandlers.Emails.Get())
			emails.GET("/stats/overview", apiHandlers.Emails.Stats())
		}
	}
}
