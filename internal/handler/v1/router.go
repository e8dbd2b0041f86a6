package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Leganyst/booking-scheduler/internal/metrics"
)

// HealthChecker проверяет доступность базы.
type HealthChecker func(ctx context.Context) error

type RouterConfig struct {
	Version        string
	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
	// Прокси, которым доверяем X-Forwarded-For. nil — ClientIP берётся из RemoteAddr,
	// иначе лимит по IP обходится подменой заголовка.
	TrustedProxies []string
}

type Router struct {
	Directory    *DirectoryHandler
	Appointments *AppointmentHandler
	Metrics      *metrics.Collector
	Health       HealthChecker
	Log          *zap.Logger
}

func (r Router) Engine(cfg RouterConfig) (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	engine.Use(
		Recovery(r.Log),
		Tracing(),
		RequestLogger(r.Log),
		CORS(cfg.AllowedOrigins),
	)
	if r.Metrics != nil {
		engine.Use(Metrics(r.Metrics))
		engine.GET("/metrics", gin.WrapH(r.Metrics.Handler()))
	}

	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Booking API", "version": cfg.Version})
	})
	engine.GET("/health", r.health)

	api := engine.Group("/", RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	providers := api.Group("/providers")
	providers.POST("", r.Directory.CreateProvider)
	providers.GET("", r.Directory.ListProviders)
	providers.GET("/:id", r.Directory.GetProvider)
	providers.PATCH("/:id", r.Directory.UpdateProvider)
	providers.DELETE("/:id", r.Directory.DeleteProvider)

	clients := api.Group("/clients")
	clients.POST("", r.Directory.CreateClient)
	clients.GET("", r.Directory.ListClients)
	clients.GET("/:id", r.Directory.GetClient)
	clients.PATCH("/:id", r.Directory.UpdateClient)
	clients.DELETE("/:id", r.Directory.DeleteClient)

	rooms := api.Group("/rooms")
	rooms.POST("", r.Directory.CreateRoom)
	rooms.GET("", r.Directory.ListRooms)
	rooms.GET("/:id", r.Directory.GetRoom)
	rooms.PATCH("/:id", r.Directory.UpdateRoom)
	rooms.DELETE("/:id", r.Directory.DeleteRoom)

	appointments := api.Group("/appointments")
	appointments.POST("", r.Appointments.Create)
	appointments.GET("", r.Appointments.List)
	appointments.GET("/:id", r.Appointments.Get)
	appointments.PATCH("/:id", r.Appointments.Update)
	appointments.DELETE("/:id", r.Appointments.Delete)
	appointments.GET("/:id/events", r.Appointments.Events)

	return engine, nil
}

func (r Router) health(c *gin.Context) {
	if r.Health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := r.Health(ctx); err != nil {
		r.Log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
