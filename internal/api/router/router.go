package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uniooo/pdf-calendar/config"
	"github.com/uniooo/pdf-calendar/internal/api/handler"
	"github.com/uniooo/pdf-calendar/internal/api/middleware"
	"github.com/uniooo/pdf-calendar/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
//
// rdb 为 nil 时不做限流。
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxUploadMB << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	{
		v1.GET("/week-number", h.Batch.WeekNumber)

		// 课表批次模块
		batches := v1.Group("/batches")
		{
			batches.POST("", h.Batch.Upload)
			batches.GET("/:id", h.Batch.GetBatch)
			batches.DELETE("/:id", h.Batch.DeleteBatch)
			batches.GET("/:id/jobs", h.Batch.ListParseJobs)
			batches.GET("/:id/week", h.Batch.WeekView)
			batches.GET("/:id/export/excel", h.Batch.ExportExcel)
			batches.GET("/:id/export/ics", h.Batch.ExportICS)
		}
	}

	return r
}
