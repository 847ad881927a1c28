package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/activity-feed/config"
	_ "github.com/d60-Lab/activity-feed/docs"
	"github.com/d60-Lab/activity-feed/internal/api/handler"
	"github.com/d60-Lab/activity-feed/internal/api/middleware"
)

// NewRouter 组装 HTTP 层；传输层只是核心服务的薄壳
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.Service))
	}
	if cfg.Server.RateLimit > 0 {
		r.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	v1 := r.Group("/api/v1")
	if cfg.Auth.Enabled {
		v1.Use(middleware.Auth(cfg.Auth.JWTSecret))
	}
	{
		v1.POST("/activities", h.Publish)
		v1.GET("/activities/:id", h.GetActivity)
		v1.DELETE("/activities/:id", h.DeleteActivity)
		v1.GET("/actors/:actor_id/activities", h.ListActivitiesByActor)
		v1.GET("/targets/:target_type/:target_id/activities", h.ListActivitiesByTarget)

		v1.GET("/users/:user_id/feed", h.GetFeed)
		v1.POST("/users/:user_id/feed/:item_id/read", h.MarkFeedItemAsRead)

		v1.POST("/subscriptions", h.Subscribe)
		v1.POST("/subscriptions/unsubscribe", h.Unsubscribe)
	}
	return r
}
